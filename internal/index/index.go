// Package index keeps the append-only history of deployments made by a
// factory, with secondary indexes by kind and by principal.
package index

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"studio/internal/address"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

var (
	ErrDuplicateAddress = errors.New("address already indexed")
	ErrInvalidCursor    = errors.New("invalid cursor")
)

// Record describes one deployment. Records never change once indexed.
type Record[K comparable] struct {
	Address       address.Address
	Kind          K
	Deployer      address.Address
	Principal     address.Address
	Sequence      uint64
	CreatedLedger uint32
	CreatedAt     time.Time
	Name          string
	Symbol        string
}

// Page is one slice of a listing. NextCursor is empty on the last page.
type Page[K comparable] struct {
	Records    []Record[K]
	NextCursor string
}

// Index is an arena of records plus position lists per kind and principal.
// It is not safe for concurrent use; the owning factory serializes access.
type Index[K comparable] struct {
	arena       []Record[K]
	byAddress   map[address.Address]int
	byKind      map[K][]int
	byPrincipal map[address.Address][]int
}

// New returns an empty index.
func New[K comparable]() *Index[K] {
	return &Index[K]{
		byAddress:   make(map[address.Address]int),
		byKind:      make(map[K][]int),
		byPrincipal: make(map[address.Address][]int),
	}
}

// Record appends rec, assigning its sequence number, and returns the stored
// record.
func (ix *Index[K]) Record(rec Record[K]) (Record[K], error) {
	if rec.Address.IsZero() {
		return Record[K]{}, fmt.Errorf("record without address")
	}
	if _, ok := ix.byAddress[rec.Address]; ok {
		return Record[K]{}, fmt.Errorf("%w: %s", ErrDuplicateAddress, rec.Address)
	}

	pos := len(ix.arena)
	rec.Sequence = uint64(pos)
	ix.arena = append(ix.arena, rec)
	ix.byAddress[rec.Address] = pos
	ix.byKind[rec.Kind] = append(ix.byKind[rec.Kind], pos)
	ix.byPrincipal[rec.Principal] = append(ix.byPrincipal[rec.Principal], pos)
	return rec, nil
}

// Get returns the record deployed at addr.
func (ix *Index[K]) Get(addr address.Address) (Record[K], bool) {
	pos, ok := ix.byAddress[addr]
	if !ok {
		return Record[K]{}, false
	}
	return ix.arena[pos], true
}

// Count returns the number of indexed deployments.
func (ix *Index[K]) Count() int {
	return len(ix.arena)
}

// CountByKind returns the number of deployments of kind.
func (ix *Index[K]) CountByKind(kind K) int {
	return len(ix.byKind[kind])
}

// CountByPrincipal returns the number of deployments owned by p.
func (ix *Index[K]) CountByPrincipal(p address.Address) int {
	return len(ix.byPrincipal[p])
}

// ListAll pages through every record in creation order.
func (ix *Index[K]) ListAll(cursor string, limit int) (Page[K], error) {
	const list = "all"
	start, err := decodeCursor(list, cursor)
	if err != nil {
		return Page[K]{}, err
	}
	limit = clamp(limit)

	if start >= len(ix.arena) {
		return Page[K]{Records: []Record[K]{}}, nil
	}
	end := min(start+limit, len(ix.arena))

	page := Page[K]{Records: make([]Record[K], end-start)}
	copy(page.Records, ix.arena[start:end])
	if end < len(ix.arena) {
		page.NextCursor = encodeCursor(list, end)
	}
	return page, nil
}

// ListByKind pages through the records of kind in creation order.
func (ix *Index[K]) ListByKind(kind K, cursor string, limit int) (Page[K], error) {
	return ix.listPositions("kind:"+fmt.Sprint(kind), ix.byKind[kind], cursor, limit)
}

// ListByPrincipal pages through the records owned by p in creation order.
func (ix *Index[K]) ListByPrincipal(p address.Address, cursor string, limit int) (Page[K], error) {
	return ix.listPositions("principal:"+p.String(), ix.byPrincipal[p], cursor, limit)
}

func (ix *Index[K]) listPositions(list string, positions []int, cursor string, limit int) (Page[K], error) {
	start, err := decodeCursor(list, cursor)
	if err != nil {
		return Page[K]{}, err
	}
	limit = clamp(limit)

	if start >= len(positions) {
		return Page[K]{Records: []Record[K]{}}, nil
	}
	end := min(start+limit, len(positions))

	page := Page[K]{Records: make([]Record[K], 0, end-start)}
	for _, pos := range positions[start:end] {
		page.Records = append(page.Records, ix.arena[pos])
	}
	if end < len(positions) {
		page.NextCursor = encodeCursor(list, end)
	}
	return page, nil
}

func clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

// A cursor is the listing it was issued for and the next position in it,
// so it cannot be replayed against another listing.
const cursorSeparator = "|"

func encodeCursor(list string, pos int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(list + cursorSeparator + strconv.Itoa(pos)))
}

func decodeCursor(list, cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	i := strings.LastIndex(string(raw), cursorSeparator)
	if i < 0 {
		return 0, fmt.Errorf("%w: unexpected format", ErrInvalidCursor)
	}
	if string(raw[:i]) != list {
		return 0, fmt.Errorf("%w: issued for another listing", ErrInvalidCursor)
	}
	pos, err := strconv.Atoi(string(raw[i+1:]))
	if err != nil || pos < 0 {
		return 0, fmt.Errorf("%w: bad position", ErrInvalidCursor)
	}
	return pos, nil
}
