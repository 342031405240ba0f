package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stellar/go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
	"studio/internal/address/addrtest"
	"studio/internal/bootstrap"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestAddressDerive(t *testing.T) {
	owner := addrtest.Contract(7)
	want, err := address.Derive(address.NetworkID(network.TestNetworkPassphrase), owner, address.SaltFromSeed("x"))
	require.NoError(t, err)

	got, err := run(t, "address", "derive", owner.String(), "--seed", "x", "--network", network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got)

	got, err = run(t, "address", "derive", owner.String(), "--salt", address.SaltFromSeed("x").String(), "--network", network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got)

	_, err = run(t, "address", "derive", owner.String())
	assert.Error(t, err)
}

func TestAddressMaster(t *testing.T) {
	admin := addrtest.Account(1)
	want, err := address.Derive(address.NetworkID(network.TestNetworkPassphrase), admin, address.SaltFromSeed(bootstrap.MasterSeed))
	require.NoError(t, err)

	got, err := run(t, "address", "master", admin.String(), "--network", network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got)
}

func TestAddressDecode(t *testing.T) {
	got, err := run(t, "address", "decode", addrtest.Contract(0xab).String())
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", 32), got)

	_, err = run(t, "address", "decode", "not-a-strkey")
	assert.Error(t, err)
}
