package address

import (
	"testing"

	"github.com/stellar/go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(t *testing.T, b byte) Address {
	t.Helper()
	var key [32]byte
	for i := range key {
		key[i] = b
	}
	a, err := FromAccountKey(key)
	require.NoError(t, err)
	return a
}

func contract(t *testing.T, b byte) Address {
	t.Helper()
	var id [32]byte
	id[0] = b
	a, err := FromContractID(id)
	require.NoError(t, err)
	return a
}

func TestParse(t *testing.T) {
	acc := account(t, 1)
	con := contract(t, 2)

	parsed, err := Parse(acc.String())
	require.NoError(t, err)
	assert.Equal(t, acc, parsed)
	assert.False(t, parsed.IsContract())

	parsed, err = Parse(con.String())
	require.NoError(t, err)
	assert.True(t, parsed.IsContract())

	for _, bad := range []string{"", "GABC", "not-an-address", acc.String() + "A"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestScAddressRoundTrip(t *testing.T) {
	for _, a := range []Address{account(t, 3), contract(t, 4)} {
		sc, err := a.ScAddress()
		require.NoError(t, err)

		s, err := sc.String()
		require.NoError(t, err)
		assert.Equal(t, a.String(), s)
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	networkID := NetworkID(network.TestNetworkPassphrase)
	factory := contract(t, 9)
	salt := SaltFromSeed("token-1")

	first, err := Derive(networkID, factory, salt)
	require.NoError(t, err)
	second, err := Derive(networkID, factory, salt)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.IsContract())
}

func TestDeriveSeparatesInputs(t *testing.T) {
	networkID := NetworkID(network.TestNetworkPassphrase)
	factory := contract(t, 9)

	seen := map[Address]bool{}
	for _, seed := range []string{"a", "b", "c", "d"} {
		a, err := Derive(networkID, factory, SaltFromSeed(seed))
		require.NoError(t, err)
		assert.False(t, seen[a], "collision for seed %s", seed)
		seen[a] = true
	}

	salt := SaltFromSeed("a")
	other, err := Derive(networkID, contract(t, 10), salt)
	require.NoError(t, err)
	assert.False(t, seen[other])

	public, err := Derive(NetworkID(network.PublicNetworkPassphrase), factory, salt)
	require.NoError(t, err)
	assert.False(t, seen[public])
}

func TestDeriveRejectsInvalidOwner(t *testing.T) {
	_, err := Derive(NetworkID(network.TestNetworkPassphrase), Address("bogus"), Salt{})
	assert.Error(t, err)
}

func TestHashAndSaltText(t *testing.T) {
	h := HashCode([]byte("wasm"))
	assert.False(t, h.IsZero())

	text, err := h.MarshalText()
	require.NoError(t, err)

	var decoded Hash
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, h, decoded)

	_, err = ParseHash("abcd")
	assert.Error(t, err)
	_, err = ParseSalt("zz" + h.String()[2:])
	assert.Error(t, err)

	salt, err := ParseSalt(h.String())
	require.NoError(t, err)
	assert.Equal(t, Salt(h), salt)
}

func TestDecodeHex(t *testing.T) {
	var id [32]byte
	id[31] = 0xff
	a, err := FromContractID(id)
	require.NoError(t, err)

	h, err := DecodeHex(a)
	require.NoError(t, err)
	assert.Equal(t, "00000000000000000000000000000000000000000000000000000000000000ff", h)
}
