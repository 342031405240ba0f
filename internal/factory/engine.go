// Package factory implements the token, NFT and governance factories: a code
// registry, a deterministic deployer, a deployment index and an admin guard
// per factory, plus per-kind config validation and constructor arguments.
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
	"studio/internal/admin"
	"studio/internal/deployer"
	"studio/internal/errs"
	"studio/internal/events"
	"studio/internal/host"
	"studio/internal/index"
	"studio/internal/registry"
	"studio/internal/scval"
)

// CtorArgsVersion identifies the constructor argument layouts built by this
// package. It is carried on every Deployed event.
const CtorArgsVersion = 1

// Options configures a factory instance.
type Options struct {
	Address   address.Address // the factory's own contract address
	Admin     address.Address
	NetworkID [32]byte
	Substrate host.Substrate
	Publisher events.Publisher
	Clock     func() time.Time
}

type ledgerReader interface {
	Ledger() uint32
}

// deployment is what a family hands the engine once its config is valid.
type deployment struct {
	salt      address.Salt
	principal address.Address
	name      string
	symbol    string
	args      []xdr.ScVal
	argNames  []string
	code      address.Hash
}

// engine is the state shared by every factory family. Every exported method
// holds mu for its whole body; events are published after mu is released.
type engine[K Kind] struct {
	mu        sync.Mutex
	family    string
	addr      address.Address
	guard     *admin.Guard
	wasm      *registry.Registry[K]
	deployer  *deployer.Deployer
	index     *index.Index[K]
	paused    bool
	publisher events.Publisher
	clock     func() time.Time
	ledger    func() uint32
}

func newEngine[K Kind](family string, opts Options) (*engine[K], error) {
	if !opts.Address.IsContract() {
		return nil, fmt.Errorf("%s factory address %q is not a contract", family, opts.Address)
	}
	if !opts.Admin.Valid() {
		return nil, fmt.Errorf("%s factory admin %q is not an address", family, opts.Admin)
	}
	if opts.Substrate == nil {
		return nil, fmt.Errorf("%s factory needs a substrate", family)
	}

	e := &engine[K]{
		family:    family,
		addr:      opts.Address,
		guard:     admin.NewGuard(opts.Admin),
		deployer:  deployer.New(opts.Address, opts.NetworkID, opts.Substrate),
		index:     index.New[K](),
		publisher: opts.Publisher,
		clock:     opts.Clock,
		ledger:    func() uint32 { return 0 },
	}
	e.wasm = registry.New[K](e.guard)
	if e.publisher == nil {
		e.publisher = events.Discard
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if lr, ok := opts.Substrate.(ledgerReader); ok {
		e.ledger = lr.Ledger
	}
	return e, nil
}

// Address returns the factory's contract address.
func (e *engine[K]) Address() address.Address {
	return e.addr
}

// Family returns "token", "nft" or "governance".
func (e *engine[K]) Family() string {
	return e.family
}

// SetWasm registers the code deployed for kind. Only the admin may call it.
func (e *engine[K]) SetWasm(caller address.Address, kind K, h address.Hash) error {
	e.mu.Lock()
	changed, err := e.setWasmLocked(caller, kind, h)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	ev := e.event(events.TypeWasmUpdated)
	ev.Actor = caller
	ev.Kind = kind.String()
	ev.CodeHash = h.String()
	e.publisher.Publish(context.Background(), ev)

	slog.Info("Wasm updated",
		"factory", e.addr,
		"family", e.family,
		"kind", kind.String(),
		"hash", h.String(),
	)
	return nil
}

// setWasmLocked checks the caller before the kind so that a non-admin is
// always told Unauthorized.
func (e *engine[K]) setWasmLocked(caller address.Address, kind K, h address.Hash) (bool, error) {
	if err := e.guard.Require(caller); err != nil {
		return false, err
	}
	if !kind.Valid() {
		return false, errs.InvalidField("kind", "unknown kind %s", kind)
	}
	return e.wasm.Set(caller, kind, h)
}

// Wasm returns the code hash registered for kind.
func (e *engine[K]) Wasm(kind K) (address.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wasm.Get(kind)
}

// WasmEntries returns a snapshot of the code registry.
func (e *engine[K]) WasmEntries() map[K]address.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wasm.Entries()
}

// deploy runs one deployment as a single step: the paused flag, the kind's
// registry entry, config validation through prepare, instantiation and the
// index append. A failure at any point leaves the index untouched.
func (e *engine[K]) deploy(ctx context.Context, invoker address.Address, kind K, prepare func() (deployment, error)) (index.Record[K], error) {
	if !invoker.Valid() {
		return index.Record[K]{}, fmt.Errorf("%w: invalid deployer %q", errs.ErrUnauthorized, invoker)
	}

	e.mu.Lock()
	rec, d, err := e.deployLocked(ctx, invoker, kind, prepare)
	e.mu.Unlock()
	if err != nil {
		slog.Debug("Deployment rejected",
			"factory", e.addr,
			"kind", kind.String(),
			"deployer", invoker,
			"error", err,
		)
		return index.Record[K]{}, err
	}

	ev := e.event(events.TypeDeployed)
	ev.Ledger = rec.CreatedLedger
	ev.Actor = invoker
	ev.Kind = kind.String()
	ev.CodeHash = d.code.String()
	ev.Address = rec.Address
	ev.Principal = rec.Principal
	ev.Sequence = rec.Sequence
	ev.Name = rec.Name
	ev.Symbol = rec.Symbol
	ev.CtorArgsVersion = CtorArgsVersion
	ev.Args = scval.Args(d.argNames, d.args)
	e.publisher.Publish(ctx, ev)

	slog.Info("✅ Contract deployed",
		"factory", e.addr,
		"family", e.family,
		"kind", kind.String(),
		"address", rec.Address,
		"principal", rec.Principal,
		"sequence", rec.Sequence,
	)
	return rec, nil
}

func (e *engine[K]) deployLocked(ctx context.Context, invoker address.Address, kind K, prepare func() (deployment, error)) (index.Record[K], deployment, error) {
	if e.paused {
		return index.Record[K]{}, deployment{}, fmt.Errorf("%w: %s factory", errs.ErrPaused, e.family)
	}
	if !kind.Valid() {
		return index.Record[K]{}, deployment{}, errs.InvalidField("kind", "unknown kind %s", kind)
	}

	code, err := e.wasm.Get(kind)
	if err != nil {
		return index.Record[K]{}, deployment{}, err
	}

	d, err := prepare()
	if err != nil {
		return index.Record[K]{}, deployment{}, err
	}
	d.code = code

	addr, err := e.deployer.Deploy(ctx, invoker, d.salt, code, d.args)
	if err != nil {
		return index.Record[K]{}, deployment{}, err
	}

	rec, err := e.index.Record(index.Record[K]{
		Address:       addr,
		Kind:          kind,
		Deployer:      invoker,
		Principal:     d.principal,
		CreatedLedger: e.ledger(),
		CreatedAt:     e.clock(),
		Name:          d.name,
		Symbol:        d.symbol,
	})
	if err != nil {
		return index.Record[K]{}, deployment{}, fmt.Errorf("failed to index %s: %w", addr, err)
	}
	return rec, d, nil
}

// Derive returns the address a deployment with salt would receive.
func (e *engine[K]) Derive(salt address.Salt) (address.Address, error) {
	return e.deployer.Derive(salt)
}

// Deployed pages through every deployment in creation order.
func (e *engine[K]) Deployed(cursor string, limit int) (index.Page[K], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.ListAll(cursor, limit)
}

// ByKind pages through the deployments of kind.
func (e *engine[K]) ByKind(kind K, cursor string, limit int) (index.Page[K], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.ListByKind(kind, cursor, limit)
}

// ByPrincipal pages through the deployments whose principal is p.
func (e *engine[K]) ByPrincipal(p address.Address, cursor string, limit int) (index.Page[K], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.ListByPrincipal(p, cursor, limit)
}

// Lookup returns the deployment at addr.
func (e *engine[K]) Lookup(addr address.Address) (index.Record[K], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Get(addr)
}

// Count returns the number of deployments.
func (e *engine[K]) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Count()
}

// CountByKind returns the number of deployments of kind.
func (e *engine[K]) CountByKind(kind K) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.CountByKind(kind)
}

// Admin returns the current admin.
func (e *engine[K]) Admin() address.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.Admin()
}

// PendingAdmin returns the proposed admin while a transfer is pending.
func (e *engine[K]) PendingAdmin() (address.Address, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.Pending()
}

// AdminState returns the admin and any pending successor.
func (e *engine[K]) AdminState() admin.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.State()
}

// TransferAdmin proposes newAdmin. caller stays admin until newAdmin accepts.
func (e *engine[K]) TransferAdmin(caller, newAdmin address.Address) error {
	e.mu.Lock()
	err := e.guard.Transfer(caller, newAdmin)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	ev := e.event(events.TypeAdminTransferInitiated)
	ev.Actor = caller
	ev.Target = newAdmin
	e.publisher.Publish(context.Background(), ev)
	return nil
}

// AcceptAdmin completes a pending transfer.
func (e *engine[K]) AcceptAdmin(caller address.Address) error {
	e.mu.Lock()
	err := e.guard.Accept(caller)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	ev := e.event(events.TypeAdminTransferred)
	ev.Actor = caller
	ev.Target = caller
	e.publisher.Publish(context.Background(), ev)

	slog.Info("Admin transferred", "factory", e.addr, "family", e.family, "admin", caller)
	return nil
}

// CancelTransfer drops a pending transfer.
func (e *engine[K]) CancelTransfer(caller address.Address) error {
	e.mu.Lock()
	pending, _ := e.guard.Pending()
	err := e.guard.Cancel(caller)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	ev := e.event(events.TypeAdminTransferCancelled)
	ev.Actor = caller
	ev.Target = pending
	e.publisher.Publish(context.Background(), ev)
	return nil
}

// Pause stops deployments until Unpause. Reads stay available.
func (e *engine[K]) Pause(caller address.Address) error {
	return e.setPaused(caller, true)
}

// Unpause resumes deployments.
func (e *engine[K]) Unpause(caller address.Address) error {
	return e.setPaused(caller, false)
}

// Paused reports whether deployments are stopped.
func (e *engine[K]) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *engine[K]) setPaused(caller address.Address, paused bool) error {
	e.mu.Lock()
	err := e.guard.Require(caller)
	if err == nil {
		e.paused = paused
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}

	t := events.TypeUnpaused
	if paused {
		t = events.TypePaused
	}
	ev := e.event(t)
	ev.Actor = caller
	e.publisher.Publish(context.Background(), ev)

	slog.Warn("Factory pause state changed", "factory", e.addr, "family", e.family, "paused", paused)
	return nil
}

func (e *engine[K]) event(t events.Type) events.Event {
	ev := events.New(t, e.family, e.addr, e.clock())
	ev.Ledger = e.ledger()
	return ev
}
