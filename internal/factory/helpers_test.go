package factory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stellar/go/network"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
	"studio/internal/address/addrtest"
	"studio/internal/events"
	"studio/internal/factory"
	"studio/internal/host"
	"studio/internal/instances"
)

var (
	factoryAdmin = addrtest.Account(1)
	deployerAcct = addrtest.Account(2)
	stranger     = addrtest.Account(3)
	managerAcct  = addrtest.Account(4)
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	ctx      context.Context
	host     *host.Memory
	recorder *events.Recorder
	opts     factory.Options
}

func newEnv(t *testing.T, addr address.Address) *env {
	t.Helper()
	h := host.NewMemory(network.TestNetworkPassphrase, host.WithClock(func() time.Time { return fixedNow }))
	rec := &events.Recorder{}
	return &env{
		ctx:      context.Background(),
		host:     h,
		recorder: rec,
		opts: factory.Options{
			Address:   addr,
			Admin:     factoryAdmin,
			NetworkID: h.NetworkID(),
			Substrate: h,
			Publisher: rec,
			Clock:     func() time.Time { return fixedNow },
		},
	}
}

// upload registers code with ctor bound to it and returns its hash.
func (e *env) upload(t *testing.T, code string, ctor host.Constructor) address.Hash {
	t.Helper()
	h, err := e.host.RegisterCode(e.ctx, []byte(code))
	require.NoError(t, err)
	e.host.SetConstructor(h, ctor)
	return h
}

func newTokenFactory(t *testing.T) (*env, *factory.TokenFactory) {
	t.Helper()
	e := newEnv(t, addrtest.Contract(0x10))
	f, err := factory.NewTokenFactory(e.opts)
	require.NoError(t, err)
	return e, f
}

func newNFTFactory(t *testing.T) (*env, *factory.NFTFactory) {
	t.Helper()
	e := newEnv(t, addrtest.Contract(0x20))
	f, err := factory.NewNFTFactory(e.opts)
	require.NoError(t, err)
	return e, f
}

func newGovernanceFactory(t *testing.T) (*env, *factory.GovernanceFactory) {
	t.Helper()
	e := newEnv(t, addrtest.Contract(0x30))
	f, err := factory.NewGovernanceFactory(e.opts)
	require.NoError(t, err)
	return e, f
}

// registerTokens uploads one code artifact per token kind and registers it.
func registerTokens(t *testing.T, e *env, f *factory.TokenFactory, kinds ...factory.TokenKind) map[factory.TokenKind]address.Hash {
	t.Helper()
	out := make(map[factory.TokenKind]address.Hash, len(kinds))
	for _, k := range kinds {
		h := e.upload(t, "token-"+k.String(), instances.ForToken(k))
		require.NoError(t, f.SetWasm(factoryAdmin, k, h))
		out[k] = h
	}
	return out
}

func pausableConfig(seed string) factory.TokenConfig {
	return factory.TokenConfig{
		Kind:          factory.Pausable,
		Salt:          address.SaltFromSeed(seed),
		Admin:         deployerAcct,
		Manager:       deployerAcct,
		Name:          "Test",
		Symbol:        "TST",
		Decimals:      7,
		InitialSupply: 1_000_000,
	}
}

func ptr[T any](v T) *T {
	return &v
}
