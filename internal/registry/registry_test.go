package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
	"studio/internal/address/addrtest"
	"studio/internal/admin"
	"studio/internal/errs"
)

type kind uint8

const (
	kindA kind = iota
	kindB
)

func TestSetAndGet(t *testing.T) {
	adm := addrtest.Account(1)
	r := New[kind](admin.NewGuard(adm))

	_, err := r.Get(kindA)
	assert.ErrorIs(t, err, errs.ErrWasmNotSet)

	h1 := address.HashCode([]byte("v1"))
	changed, err := r.Set(adm, kindA, h1)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := r.Get(kindA)
	require.NoError(t, err)
	assert.Equal(t, h1, got)

	_, err = r.Get(kindB)
	assert.ErrorIs(t, err, errs.ErrWasmNotSet)
}

func TestSetSameHashIsNoop(t *testing.T) {
	adm := addrtest.Account(1)
	r := New[kind](admin.NewGuard(adm))
	h := address.HashCode([]byte("v1"))

	_, err := r.Set(adm, kindA, h)
	require.NoError(t, err)
	changed, err := r.Set(adm, kindA, h)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestOverwrite(t *testing.T) {
	adm := addrtest.Account(1)
	r := New[kind](admin.NewGuard(adm))
	h1 := address.HashCode([]byte("v1"))
	h2 := address.HashCode([]byte("v2"))

	_, err := r.Set(adm, kindA, h1)
	require.NoError(t, err)
	changed, err := r.Set(adm, kindA, h2)
	require.NoError(t, err)
	assert.True(t, changed)

	got, _ := r.Get(kindA)
	assert.Equal(t, h2, got)
	assert.Len(t, r.Entries(), 1)
}

func TestSetRejections(t *testing.T) {
	adm := addrtest.Account(1)
	r := New[kind](admin.NewGuard(adm))
	h := address.HashCode([]byte("v1"))

	_, err := r.Set(addrtest.Account(2), kindA, h)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = r.Set(adm, kindA, address.Hash{})
	assert.ErrorIs(t, err, errs.ErrInvalidHash)

	assert.Empty(t, r.Entries())
}

func TestEntriesIsSnapshot(t *testing.T) {
	adm := addrtest.Account(1)
	r := New[kind](admin.NewGuard(adm))
	_, err := r.Set(adm, kindA, address.HashCode([]byte("v1")))
	require.NoError(t, err)

	snap := r.Entries()
	delete(snap, kindA)

	_, err = r.Get(kindA)
	assert.NoError(t, err)
}
