package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
	"studio/internal/address/addrtest"
	"studio/internal/errs"
	"studio/internal/factory"
)

func TestDecodeTokenConfig(t *testing.T) {
	salt := address.SaltFromSeed("decode")
	raw := map[string]any{
		"kind":           "Capped",
		"salt":           salt.String(),
		"admin":          deployerAcct.String(),
		"manager":        managerAcct.String(),
		"name":           "Decoded",
		"symbol":         "DEC",
		"decimals":       7,
		"initial_supply": 100,
		"cap":            1000,
	}

	cfg, err := factory.DecodeTokenConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, factory.Capped, cfg.Kind)
	assert.Equal(t, salt, cfg.Salt)
	assert.Equal(t, deployerAcct, cfg.Admin)
	assert.Equal(t, uint32(7), cfg.Decimals)
	require.NotNil(t, cfg.Cap)
	assert.Equal(t, int64(1000), *cfg.Cap)
	assert.Nil(t, cfg.Asset)
	assert.NoError(t, cfg.Validate())
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	raw := map[string]any{
		"kind":    "pausable",
		"salt":    address.SaltFromSeed("x").String(),
		"admin":   deployerAcct.String(),
		"royalty": 5,
	}

	_, err := factory.DecodeTokenConfig(raw)
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "royalty")
}

func TestDecodeRequiresTag(t *testing.T) {
	_, err := factory.DecodeNFTConfig(map[string]any{"salt": address.SaltFromSeed("x").String()})
	var ce *errs.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "kind", ce.Field)

	_, err = factory.DecodeNFTConfig(map[string]any{"kind": "enumerable"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "salt", ce.Field)
}

func TestDecodeBadValues(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"kind":  "merkle_voting",
			"salt":  address.SaltFromSeed("x").String(),
			"admin": deployerAcct.String(),
		}
	}

	raw := base()
	raw["kind"] = "quadratic"
	_, err := factory.DecodeGovernanceConfig(raw)
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)

	raw = base()
	raw["salt"] = "abcd"
	_, err = factory.DecodeGovernanceConfig(raw)
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestDecodeGovernanceConfig(t *testing.T) {
	root := address.HashCode([]byte("tree"))
	owners := []any{addrtest.Account(40).String(), addrtest.Account(41).String()}

	cfg, err := factory.DecodeGovernanceConfig(map[string]any{
		"kind":      "Multisig",
		"salt":      address.SaltFromSeed("g").String(),
		"admin":     deployerAcct.String(),
		"owners":    owners,
		"threshold": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, factory.Multisig, cfg.Kind)
	assert.Len(t, cfg.Owners, 2)
	assert.NoError(t, cfg.Validate())

	cfg, err = factory.DecodeGovernanceConfig(map[string]any{
		"kind":      "MerkleVoting",
		"salt":      address.SaltFromSeed("m").String(),
		"admin":     deployerAcct.String(),
		"root_hash": root.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.RootHash)
	assert.Equal(t, root, *cfg.RootHash)
}

func TestDecodeNFTConfig(t *testing.T) {
	cfg, err := factory.DecodeNFTConfig(map[string]any{
		"kind":     "AccessControl",
		"salt":     address.SaltFromSeed("n").String(),
		"owner":    deployerAcct.String(),
		"admin":    managerAcct.String(),
		"base_uri": "ipfs://x/",
	})
	require.NoError(t, err)
	assert.Equal(t, factory.AccessControl, cfg.Kind)
	require.NotNil(t, cfg.Admin)
	assert.Equal(t, managerAcct, *cfg.Admin)
	assert.Nil(t, cfg.Manager)
	assert.NoError(t, cfg.Validate())
}

func TestParseKinds(t *testing.T) {
	for _, k := range factory.TokenKinds {
		got, err := factory.ParseTokenKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	k, err := factory.ParseNFTKind("Access-Control")
	require.NoError(t, err)
	assert.Equal(t, factory.AccessControl, k)

	_, err = factory.ParseGovernanceKind("liquid")
	assert.Error(t, err)
	assert.Equal(t, "TokenKind(9)", factory.TokenKind(9).String())
}
