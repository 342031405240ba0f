package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
	"studio/internal/address/addrtest"
	"studio/internal/errs"
	"studio/internal/factory"
	"studio/internal/instances"
)

func registerGovernance(t *testing.T, e *env, f *factory.GovernanceFactory) {
	t.Helper()
	require.NoError(t, f.SetMerkleVotingWasm(factoryAdmin, e.upload(t, "gov-merkle", instances.ForGovernance(factory.MerkleVoting))))
	require.NoError(t, f.SetMultisigWasm(factoryAdmin, e.upload(t, "gov-multisig", instances.ForGovernance(factory.Multisig))))
}

func TestDeployMerkleVoting(t *testing.T) {
	e, f := newGovernanceFactory(t)
	registerGovernance(t, e, f)
	root := address.HashCode([]byte("voters"))

	addr, err := f.DeployGovernance(e.ctx, deployerAcct, factory.GovernanceConfig{
		Kind:     factory.MerkleVoting,
		Salt:     address.SaltFromSeed("merkle"),
		Admin:    deployerAcct,
		RootHash: &root,
	})
	require.NoError(t, err)

	mv, err := instances.As[*instances.MerkleVoting](e.host, addr)
	require.NoError(t, err)
	assert.Equal(t, root, mv.RootHash)
}

func TestDeployMultisig(t *testing.T) {
	e, f := newGovernanceFactory(t)
	registerGovernance(t, e, f)
	owners := []address.Address{addrtest.Account(30), addrtest.Account(31), addrtest.Account(32)}
	adm := addrtest.Account(33)

	addr, err := f.DeployGovernance(e.ctx, deployerAcct, factory.GovernanceConfig{
		Kind:      factory.Multisig,
		Salt:      address.SaltFromSeed("multisig"),
		Admin:     adm,
		Owners:    owners,
		Threshold: ptr(uint32(2)),
	})
	require.NoError(t, err)

	ms, err := instances.As[*instances.Multisig](e.host, addr)
	require.NoError(t, err)
	assert.Equal(t, owners, ms.Owners)
	assert.Equal(t, uint32(2), ms.Threshold)
	assert.Equal(t, adm, ms.Admin)

	page, err := f.ByPrincipal(adm, "", 0)
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
}

func TestGovernanceValidation(t *testing.T) {
	root := address.HashCode([]byte("root"))
	zero := address.Hash{}
	owners := []address.Address{addrtest.Account(34), addrtest.Account(35)}

	tests := []struct {
		name  string
		cfg   factory.GovernanceConfig
		field string
	}{
		{"merkle without root", factory.GovernanceConfig{Kind: factory.MerkleVoting, Admin: deployerAcct}, "root_hash"},
		{"merkle zero root", factory.GovernanceConfig{Kind: factory.MerkleVoting, Admin: deployerAcct, RootHash: &zero}, "root_hash"},
		{"merkle with owners", factory.GovernanceConfig{Kind: factory.MerkleVoting, Admin: deployerAcct, RootHash: &root, Owners: owners}, "owners"},
		{"merkle with threshold", factory.GovernanceConfig{Kind: factory.MerkleVoting, Admin: deployerAcct, RootHash: &root, Threshold: ptr(uint32(1))}, "threshold"},
		{"multisig with root", factory.GovernanceConfig{Kind: factory.Multisig, Admin: deployerAcct, RootHash: &root, Owners: owners, Threshold: ptr(uint32(1))}, "root_hash"},
		{"multisig without owners", factory.GovernanceConfig{Kind: factory.Multisig, Admin: deployerAcct, Threshold: ptr(uint32(1))}, "owners"},
		{"multisig duplicate owners", factory.GovernanceConfig{Kind: factory.Multisig, Admin: deployerAcct, Owners: []address.Address{owners[0], owners[0]}, Threshold: ptr(uint32(1))}, "owners"},
		{"multisig without threshold", factory.GovernanceConfig{Kind: factory.Multisig, Admin: deployerAcct, Owners: owners}, "threshold"},
		{"multisig zero threshold", factory.GovernanceConfig{Kind: factory.Multisig, Admin: deployerAcct, Owners: owners, Threshold: ptr(uint32(0))}, "threshold"},
		{"multisig threshold above owners", factory.GovernanceConfig{Kind: factory.Multisig, Admin: deployerAcct, Owners: owners, Threshold: ptr(uint32(3))}, "threshold"},
		{"missing admin", factory.GovernanceConfig{Kind: factory.Multisig, Owners: owners, Threshold: ptr(uint32(1))}, "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var ce *errs.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}
