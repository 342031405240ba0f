// Package host models the code-deployment substrate the factories run on:
// content-addressed code upload and deterministic instantiation with
// constructor arguments.
package host

import (
	"context"
	"errors"
	"time"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
)

var (
	ErrCodeNotFound     = errors.New("code not found")
	ErrEmptyCode        = errors.New("empty code")
	ErrInstanceExists   = errors.New("instance already exists")
	ErrInstanceNotFound = errors.New("instance not found")
	ErrAddressMismatch  = errors.New("address does not match deployer and salt")
)

// Substrate is the deployment capability the factories depend on.
type Substrate interface {
	// RegisterCode uploads code and returns its content hash.
	RegisterCode(ctx context.Context, code []byte) (address.Hash, error)

	// Exists reports whether an instance lives at addr.
	Exists(ctx context.Context, addr address.Address) (bool, error)

	// Instantiate creates an instance of CodeHash at Address and runs its
	// constructor with Args. Constructor failures are returned as
	// *errs.ConstructorError.
	Instantiate(ctx context.Context, req InstantiateRequest) error
}

// InstantiateRequest describes a single instantiation.
type InstantiateRequest struct {
	Address  address.Address // derived from Deployer and Salt
	Deployer address.Address // contract whose identity seeds the address
	Invoker  address.Address // account that submitted the call
	Salt     address.Salt
	CodeHash address.Hash
	Args     []xdr.ScVal
}

// InstanceContext is what a constructor sees.
type InstanceContext struct {
	Address  address.Address
	Deployer address.Address
	Invoker  address.Address
	CodeHash address.Hash
	Args     []xdr.ScVal
	Ledger   uint32
	Time     time.Time
}

// Constructor runs when code is instantiated. The returned value is kept as
// the instance's state. Constructors run with the host locked and must not
// call back into it.
type Constructor func(ctx InstanceContext) (any, error)

// Instance is a live contract instance.
type Instance struct {
	Address       address.Address
	CodeHash      address.Hash
	Deployer      address.Address
	CreatedLedger uint32
	CreatedAt     time.Time
	Value         any
}
