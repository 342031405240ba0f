// Package events defines the notifications emitted by factories and the
// master after a state change commits.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio/internal/address"
)

// Type identifies what happened.
type Type string

const (
	TypeWasmUpdated            Type = "wasm_updated"
	TypeDeployed               Type = "deployed"
	TypeFactoryDeployed        Type = "factory_deployed"
	TypeAdminTransferInitiated Type = "admin_transfer_initiated"
	TypeAdminTransferred       Type = "admin_transferred"
	TypeAdminTransferCancelled Type = "admin_transfer_cancelled"
	TypePaused                 Type = "paused"
	TypeUnpaused               Type = "unpaused"
)

// Event is a committed state change. Fields that do not apply to Type are
// left zero.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      Type            `json:"type"`
	Source    address.Address `json:"source"` // emitting contract
	Family    string          `json:"family"` // token, nft, governance or master
	Timestamp time.Time       `json:"timestamp"`
	Ledger    uint32          `json:"ledger,omitempty"`

	Actor  address.Address `json:"actor,omitempty"`
	Target address.Address `json:"target,omitempty"`

	// Registry and deployment data
	Kind            string                 `json:"kind,omitempty"`
	CodeHash        string                 `json:"code_hash,omitempty"`
	Address         address.Address        `json:"address,omitempty"`
	Principal       address.Address        `json:"principal,omitempty"`
	Sequence        uint64                 `json:"sequence"`
	Name            string                 `json:"name,omitempty"`
	Symbol          string                 `json:"symbol,omitempty"`
	CtorArgsVersion int                    `json:"ctor_args_version,omitempty"`
	Args            map[string]interface{} `json:"args,omitempty"`
}

// New returns an event of type t emitted by source, stamped with a fresh id.
func New(t Type, family string, source address.Address, now time.Time) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		Source:    source,
		Family:    family,
		Timestamp: now,
	}
}

// Publisher receives events once the emitting call has released its lock.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event)

func (f PublisherFunc) Publish(ctx context.Context, e Event) {
	f(ctx, e)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) {})

// Recorder keeps published events in memory. It is meant for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
