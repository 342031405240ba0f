// Package deployer instantiates code at addresses derived from the owning
// contract's identity and a caller-chosen salt.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/host"
)

// Deployer deploys on behalf of a single owner contract.
type Deployer struct {
	owner     address.Address
	networkID [32]byte
	substrate host.Substrate
}

// New returns a Deployer for owner on the network identified by networkID.
func New(owner address.Address, networkID [32]byte, substrate host.Substrate) *Deployer {
	return &Deployer{
		owner:     owner,
		networkID: networkID,
		substrate: substrate,
	}
}

// Owner returns the contract whose identity seeds derived addresses.
func (d *Deployer) Owner() address.Address {
	return d.owner
}

// Derive returns the address a deployment with salt will receive. It only
// depends on the owner, the network and salt.
func (d *Deployer) Derive(salt address.Salt) (address.Address, error) {
	return address.Derive(d.networkID, d.owner, salt)
}

// Deploy instantiates codeHash with args at the address derived from salt.
// An occupied address fails with ErrAddressCollision; constructor failures
// are returned as *errs.ConstructorError.
func (d *Deployer) Deploy(ctx context.Context, invoker address.Address, salt address.Salt, codeHash address.Hash, args []xdr.ScVal) (address.Address, error) {
	addr, err := d.Derive(salt)
	if err != nil {
		return "", fmt.Errorf("failed to derive address: %w", err)
	}

	exists, err := d.substrate.Exists(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", addr, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s (salt %s)", errs.ErrAddressCollision, addr, salt)
	}

	err = d.substrate.Instantiate(ctx, host.InstantiateRequest{
		Address:  addr,
		Deployer: d.owner,
		Invoker:  invoker,
		Salt:     salt,
		CodeHash: codeHash,
		Args:     args,
	})
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrConstructorFailed):
		return "", err
	case errors.Is(err, host.ErrInstanceExists):
		return "", fmt.Errorf("%w: %s (salt %s)", errs.ErrAddressCollision, addr, salt)
	default:
		return "", fmt.Errorf("failed to instantiate %s: %w", codeHash, err)
	}

	slog.Debug("Contract instantiated",
		"address", addr,
		"owner", d.owner,
		"code_hash", codeHash.String(),
		"args", len(args),
	)
	return addr, nil
}
