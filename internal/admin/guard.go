// Package admin implements the two-step administrator transfer shared by
// every factory and the master.
package admin

import (
	"fmt"

	"studio/internal/address"
	"studio/internal/errs"
)

// State is a snapshot of the guard. Pending is nil while the guard is stable.
type State struct {
	Admin   address.Address  `json:"admin"`
	Pending *address.Address `json:"pending_admin,omitempty"`
}

// Guard holds the current admin and an optional proposed successor.
// A Guard is not safe for concurrent use; its owner serializes calls.
type Guard struct {
	admin   address.Address
	pending *address.Address
}

// NewGuard returns a stable guard administered by admin.
func NewGuard(admin address.Address) *Guard {
	return &Guard{admin: admin}
}

// Admin returns the current admin.
func (g *Guard) Admin() address.Address {
	return g.admin
}

// Pending returns the proposed admin, if a transfer is in flight.
func (g *Guard) Pending() (address.Address, bool) {
	if g.pending == nil {
		return "", false
	}
	return *g.pending, true
}

// State returns a copy of the guard state.
func (g *Guard) State() State {
	s := State{Admin: g.admin}
	if g.pending != nil {
		p := *g.pending
		s.Pending = &p
	}
	return s
}

// IsAdmin reports whether caller is the current admin.
func (g *Guard) IsAdmin(caller address.Address) bool {
	return !caller.IsZero() && caller == g.admin
}

// Require fails with ErrUnauthorized unless caller is the current admin.
func (g *Guard) Require(caller address.Address) error {
	if !g.IsAdmin(caller) {
		return fmt.Errorf("%w: %s is not the admin", errs.ErrUnauthorized, caller)
	}
	return nil
}

// Transfer proposes newAdmin as the next admin. The current admin keeps
// every right until the proposal is accepted.
func (g *Guard) Transfer(caller, newAdmin address.Address) error {
	if err := g.Require(caller); err != nil {
		return err
	}
	if g.pending != nil {
		return fmt.Errorf("%w: transfer to %s already pending", errs.ErrInvalidState, *g.pending)
	}
	if newAdmin.IsZero() || newAdmin == g.admin {
		return fmt.Errorf("%w: %q", errs.ErrInvalidTarget, newAdmin)
	}
	if !newAdmin.Valid() {
		return fmt.Errorf("%w: %q is not an address", errs.ErrInvalidTarget, newAdmin)
	}
	p := newAdmin
	g.pending = &p
	return nil
}

// Accept completes a pending transfer. Only the proposed admin may accept.
func (g *Guard) Accept(caller address.Address) error {
	if g.pending == nil {
		return fmt.Errorf("%w: no pending transfer", errs.ErrInvalidState)
	}
	if caller.IsZero() || caller != *g.pending {
		return fmt.Errorf("%w: %s is not the proposed admin", errs.ErrUnauthorized, caller)
	}
	g.admin = *g.pending
	g.pending = nil
	return nil
}

// Cancel drops a pending transfer, restoring the stable state.
func (g *Guard) Cancel(caller address.Address) error {
	if g.pending == nil {
		return fmt.Errorf("%w: no pending transfer", errs.ErrInvalidState)
	}
	if err := g.Require(caller); err != nil {
		return err
	}
	g.pending = nil
	return nil
}
