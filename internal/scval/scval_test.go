package scval

import (
	"math"
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
)

func TestI128RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1_000_000, math.MaxInt64, math.MinInt64} {
		got, err := ToI128(FromI128(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestTypeMismatch(t *testing.T) {
	_, err := ToU32(FromString("x"))
	assert.Error(t, err)
	_, err = ToString(FromU32(1))
	assert.Error(t, err)
	_, err = ToBytes32(FromU32(1))
	assert.Error(t, err)
}

func TestAddressVec(t *testing.T) {
	var key [32]byte
	key[0] = 7
	acc, err := address.FromAccountKey(key)
	require.NoError(t, err)

	val, err := FromAddresses([]address.Address{acc, acc})
	require.NoError(t, err)

	vec, err := ToVec(val)
	require.NoError(t, err)
	require.Len(t, vec, 2)

	got, err := ToAddress(vec[1])
	require.NoError(t, err)
	assert.Equal(t, acc, got)
}

func TestArgsRendering(t *testing.T) {
	root := address.HashCode([]byte("root"))
	rendered := Args(
		[]string{"name", "decimals"},
		[]xdr.ScVal{FromString("Test"), FromU32(7), FromBytes32(root)},
	)

	assert.Equal(t, "Test", rendered["name"])
	assert.Equal(t, uint32(7), rendered["decimals"])
	assert.Equal(t, root.String(), rendered["arg2"])
}
