package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"studio/internal/address"
	"studio/internal/errs"
)

// Memory is an in-process Substrate. It keeps uploaded code, live instances
// and a ledger counter that advances on every successful instantiation.
type Memory struct {
	mu           sync.RWMutex
	networkID    [32]byte
	code         map[address.Hash][]byte
	constructors map[address.Hash]Constructor
	instances    map[address.Address]*Instance
	ledger       uint32
	clock        func() time.Time
}

// Option configures a Memory host.
type Option func(*Memory)

// WithClock overrides the wall clock used for instance timestamps.
func WithClock(clock func() time.Time) Option {
	return func(m *Memory) {
		m.clock = clock
	}
}

// WithStartLedger sets the initial ledger sequence.
func WithStartLedger(seq uint32) Option {
	return func(m *Memory) {
		m.ledger = seq
	}
}

// NewMemory creates a Memory host for the network identified by passphrase.
func NewMemory(passphrase string, opts ...Option) *Memory {
	m := &Memory{
		networkID:    address.NetworkID(passphrase),
		code:         make(map[address.Hash][]byte),
		constructors: make(map[address.Hash]Constructor),
		instances:    make(map[address.Address]*Instance),
		ledger:       1,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NetworkID returns the network id addresses are derived under.
func (m *Memory) NetworkID() [32]byte {
	return m.networkID
}

// RegisterCode stores code under its content hash. Uploading identical code
// twice returns the same hash.
func (m *Memory) RegisterCode(ctx context.Context, code []byte) (address.Hash, error) {
	if len(code) == 0 {
		return address.Hash{}, ErrEmptyCode
	}
	h := address.HashCode(code)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.code[h]; !ok {
		stored := make([]byte, len(code))
		copy(stored, code)
		m.code[h] = stored
		slog.Debug("Code registered", "hash", h.String(), "size", len(code))
	}
	return h, nil
}

// SetConstructor binds a constructor to uploaded code. Code without a
// constructor instantiates with a nil value.
func (m *Memory) SetConstructor(h address.Hash, c Constructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constructors[h] = c
}

// HasCode reports whether h has been uploaded.
func (m *Memory) HasCode(h address.Hash) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.code[h]
	return ok
}

// Exists reports whether an instance lives at addr.
func (m *Memory) Exists(ctx context.Context, addr address.Address) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.instances[addr]
	return ok, nil
}

// Instantiate runs the constructor for req.CodeHash and stores the instance
// only if the constructor succeeds.
func (m *Memory) Instantiate(ctx context.Context, req InstantiateRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	derived, err := address.Derive(m.networkID, req.Deployer, req.Salt)
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}
	if derived != req.Address {
		return fmt.Errorf("%w: got %s, want %s", ErrAddressMismatch, req.Address, derived)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.code[req.CodeHash]; !ok {
		return fmt.Errorf("%w: %s", ErrCodeNotFound, req.CodeHash)
	}
	if _, ok := m.instances[req.Address]; ok {
		return fmt.Errorf("%w: %s", ErrInstanceExists, req.Address)
	}

	ledger := m.ledger + 1
	now := m.clock()

	var value any
	if ctor := m.constructors[req.CodeHash]; ctor != nil {
		value, err = ctor(InstanceContext{
			Address:  req.Address,
			Deployer: req.Deployer,
			Invoker:  req.Invoker,
			CodeHash: req.CodeHash,
			Args:     req.Args,
			Ledger:   ledger,
			Time:     now,
		})
		if err != nil {
			return errs.NewConstructorError(err)
		}
	}

	m.ledger = ledger
	m.instances[req.Address] = &Instance{
		Address:       req.Address,
		CodeHash:      req.CodeHash,
		Deployer:      req.Deployer,
		CreatedLedger: ledger,
		CreatedAt:     now,
		Value:         value,
	}
	return nil
}

// Instance returns the instance at addr.
func (m *Memory) Instance(addr address.Address) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[addr]
	return inst, ok
}

// Ledger returns the current ledger sequence.
func (m *Memory) Ledger() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger
}

// Now returns the host clock reading.
func (m *Memory) Now() time.Time {
	return m.clock()
}
