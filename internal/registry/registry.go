// Package registry maps contract kinds to the content hash of the code that
// new deployments of that kind instantiate.
package registry

import (
	"fmt"

	"studio/internal/address"
	"studio/internal/errs"
)

// Authorizer decides whether caller may change the registry.
type Authorizer interface {
	Require(caller address.Address) error
}

// Registry holds at most one code hash per kind. It is not safe for
// concurrent use; the owning factory serializes access.
type Registry[K comparable] struct {
	auth    Authorizer
	entries map[K]address.Hash
}

// New returns an empty registry gated by auth.
func New[K comparable](auth Authorizer) *Registry[K] {
	return &Registry[K]{
		auth:    auth,
		entries: make(map[K]address.Hash),
	}
}

// Set stores h for kind. It reports changed=false when kind already maps to
// h. Overwrites only affect deployments made afterwards.
func (r *Registry[K]) Set(caller address.Address, kind K, h address.Hash) (changed bool, err error) {
	if err := r.auth.Require(caller); err != nil {
		return false, err
	}
	if h.IsZero() {
		return false, fmt.Errorf("%w: zero hash for %v", errs.ErrInvalidHash, kind)
	}
	if current, ok := r.entries[kind]; ok && current == h {
		return false, nil
	}
	r.entries[kind] = h
	return true, nil
}

// Get returns the hash registered for kind.
func (r *Registry[K]) Get(kind K) (address.Hash, error) {
	h, ok := r.entries[kind]
	if !ok {
		return address.Hash{}, fmt.Errorf("%w: %v", errs.ErrWasmNotSet, kind)
	}
	return h, nil
}

// Entries returns a snapshot of the registry.
func (r *Registry[K]) Entries() map[K]address.Hash {
	out := make(map[K]address.Hash, len(r.entries))
	for k, h := range r.entries {
		out[k] = h
	}
	return out
}
