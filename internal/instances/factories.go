package instances

import (
	"fmt"
	"time"

	"studio/internal/address"
	"studio/internal/events"
	"studio/internal/factory"
	"studio/internal/host"
	"studio/internal/scval"
)

// Env is what a factory contract needs from its surroundings once the
// master instantiates it.
type Env struct {
	NetworkID [32]byte
	Substrate host.Substrate
	Publisher events.Publisher
	Clock     func() time.Time
}

// TokenFactory returns the constructor of the token factory contract. Its
// single argument is the new factory's admin.
func TokenFactory(env Env) host.Constructor {
	return func(ic host.InstanceContext) (any, error) {
		opts, err := env.options(ic)
		if err != nil {
			return nil, err
		}
		return factory.NewTokenFactory(opts)
	}
}

// NFTFactory returns the constructor of the NFT factory contract.
func NFTFactory(env Env) host.Constructor {
	return func(ic host.InstanceContext) (any, error) {
		opts, err := env.options(ic)
		if err != nil {
			return nil, err
		}
		return factory.NewNFTFactory(opts)
	}
}

// GovernanceFactory returns the constructor of the governance factory
// contract.
func GovernanceFactory(env Env) host.Constructor {
	return func(ic host.InstanceContext) (any, error) {
		opts, err := env.options(ic)
		if err != nil {
			return nil, err
		}
		return factory.NewGovernanceFactory(opts)
	}
}

func (env Env) options(ic host.InstanceContext) (factory.Options, error) {
	if err := arity(ic.Args, 1); err != nil {
		return factory.Options{}, err
	}
	adm, err := scval.ToAddress(ic.Args[0])
	if err != nil {
		return factory.Options{}, fmt.Errorf("admin: %w", err)
	}
	return factory.Options{
		Address:   ic.Address,
		Admin:     adm,
		NetworkID: env.NetworkID,
		Substrate: env.Substrate,
		Publisher: env.Publisher,
		Clock:     env.Clock,
	}, nil
}

// As returns the instance value at addr as a T.
func As[T any](m *host.Memory, addr address.Address) (T, error) {
	var zero T
	inst, ok := m.Instance(addr)
	if !ok {
		return zero, fmt.Errorf("%w: %s", host.ErrInstanceNotFound, addr)
	}
	v, ok := inst.Value.(T)
	if !ok {
		return zero, fmt.Errorf("instance %s holds %T", addr, inst.Value)
	}
	return v, nil
}
