package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stellar/go/network"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/scval"
)

func factoryAddress(t *testing.T) address.Address {
	t.Helper()
	var id [32]byte
	id[0] = 0xfa
	a, err := address.FromContractID(id)
	require.NoError(t, err)
	return a
}

func request(t *testing.T, m *Memory, code address.Hash, seed string) InstantiateRequest {
	t.Helper()
	owner := factoryAddress(t)
	salt := address.SaltFromSeed(seed)
	addr, err := address.Derive(m.NetworkID(), owner, salt)
	require.NoError(t, err)
	return InstantiateRequest{Address: addr, Deployer: owner, Salt: salt, CodeHash: code}
}

func TestRegisterCode(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(network.TestNetworkPassphrase)

	h1, err := m.RegisterCode(ctx, []byte("wasm-a"))
	require.NoError(t, err)
	h2, err := m.RegisterCode(ctx, []byte("wasm-a"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.True(t, m.HasCode(h1))

	_, err = m.RegisterCode(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyCode)
}

func TestInstantiate(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewMemory(network.TestNetworkPassphrase, WithClock(func() time.Time { return fixed }), WithStartLedger(100))

	code, err := m.RegisterCode(ctx, []byte("wasm"))
	require.NoError(t, err)

	var seen InstanceContext
	m.SetConstructor(code, func(ic InstanceContext) (any, error) {
		seen = ic
		name, err := scval.ToString(ic.Args[0])
		return name, err
	})

	req := request(t, m, code, "one")
	req.Args = []xdr.ScVal{scval.FromString("hello")}
	require.NoError(t, m.Instantiate(ctx, req))

	exists, err := m.Exists(ctx, req.Address)
	require.NoError(t, err)
	assert.True(t, exists)

	inst, ok := m.Instance(req.Address)
	require.True(t, ok)
	assert.Equal(t, "hello", inst.Value)
	assert.Equal(t, uint32(101), inst.CreatedLedger)
	assert.Equal(t, fixed, inst.CreatedAt)
	assert.Equal(t, uint32(101), seen.Ledger)
	assert.Equal(t, uint32(101), m.Ledger())

	err = m.Instantiate(ctx, req)
	assert.ErrorIs(t, err, ErrInstanceExists)
}

func TestInstantiateFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(network.TestNetworkPassphrase)

	t.Run("unknown code", func(t *testing.T) {
		err := m.Instantiate(ctx, request(t, m, address.HashCode([]byte("missing")), "x"))
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("address mismatch", func(t *testing.T) {
		code, err := m.RegisterCode(ctx, []byte("wasm"))
		require.NoError(t, err)
		req := request(t, m, code, "x")
		req.Salt = address.SaltFromSeed("y")
		assert.ErrorIs(t, m.Instantiate(ctx, req), ErrAddressMismatch)
	})

	t.Run("constructor failure leaves nothing behind", func(t *testing.T) {
		code, err := m.RegisterCode(ctx, []byte("failing"))
		require.NoError(t, err)
		m.SetConstructor(code, func(InstanceContext) (any, error) {
			return nil, errors.New("cap exceeded")
		})

		before := m.Ledger()
		req := request(t, m, code, "z")
		err = m.Instantiate(ctx, req)

		var ce *errs.ConstructorError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "cap exceeded", ce.Reason)
		assert.ErrorIs(t, err, errs.ErrConstructorFailed)

		exists, _ := m.Exists(ctx, req.Address)
		assert.False(t, exists)
		assert.Equal(t, before, m.Ledger())
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, m.Instantiate(cctx, InstantiateRequest{}), context.Canceled)
	})
}
