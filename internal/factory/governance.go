package factory

import (
	"context"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/scval"
)

// GovernanceConfig is the tagged deploy request for a governance contract.
// MerkleVoting takes RootHash; Multisig takes Owners and Threshold. Admin is
// the principal for both.
type GovernanceConfig struct {
	Kind      GovernanceKind    `mapstructure:"kind" json:"kind"`
	Salt      address.Salt      `mapstructure:"salt" json:"salt"`
	Admin     address.Address   `mapstructure:"admin" json:"admin"`
	RootHash  *address.Hash     `mapstructure:"root_hash" json:"root_hash,omitempty"`
	Owners    []address.Address `mapstructure:"owners" json:"owners,omitempty"`
	Threshold *uint32           `mapstructure:"threshold" json:"threshold,omitempty"`
}

// Validate checks cfg against the rules of its kind.
func (c GovernanceConfig) Validate() error {
	if !c.Kind.Valid() {
		return errs.InvalidField("kind", "unknown governance kind %d", uint8(c.Kind))
	}
	if err := requireAddress("admin", c.Admin); err != nil {
		return err
	}

	switch c.Kind {
	case MerkleVoting:
		if c.RootHash == nil || c.RootHash.IsZero() {
			return errs.InvalidField("root_hash", "required for merkle voting")
		}
		if err := forbid("owners", c.Owners != nil, c.Kind.String()); err != nil {
			return err
		}
		return forbid("threshold", c.Threshold != nil, c.Kind.String())
	default:
		if err := forbid("root_hash", c.RootHash != nil, c.Kind.String()); err != nil {
			return err
		}
		if len(c.Owners) == 0 {
			return errs.InvalidField("owners", "required for multisig")
		}
		seen := make(map[address.Address]struct{}, len(c.Owners))
		for _, o := range c.Owners {
			if err := requireAddress("owners", o); err != nil {
				return err
			}
			if _, dup := seen[o]; dup {
				return errs.InvalidField("owners", "duplicate owner %s", o)
			}
			seen[o] = struct{}{}
		}
		if c.Threshold == nil {
			return errs.InvalidField("threshold", "required for multisig")
		}
		if *c.Threshold < 1 || int(*c.Threshold) > len(c.Owners) {
			return errs.InvalidField("threshold", "must be between 1 and %d", len(c.Owners))
		}
		return nil
	}
}

func (c GovernanceConfig) ctorArgs() ([]xdr.ScVal, []string, error) {
	if c.Kind == MerkleVoting {
		return []xdr.ScVal{scval.FromBytes32(*c.RootHash)}, []string{"root_hash"}, nil
	}

	adm, err := scval.FromAddress(c.Admin)
	if err != nil {
		return nil, nil, err
	}
	owners, err := scval.FromAddresses(c.Owners)
	if err != nil {
		return nil, nil, err
	}
	args := []xdr.ScVal{adm, owners, scval.FromU32(*c.Threshold)}
	return args, []string{"admin", "owners", "threshold"}, nil
}

// GovernanceFactory deploys governance contracts. The principal of a
// governance contract is its admin.
type GovernanceFactory struct {
	*engine[GovernanceKind]
}

// NewGovernanceFactory creates a governance factory administered by
// opts.Admin.
func NewGovernanceFactory(opts Options) (*GovernanceFactory, error) {
	e, err := newEngine[GovernanceKind]("governance", opts)
	if err != nil {
		return nil, err
	}
	return &GovernanceFactory{engine: e}, nil
}

// DeployGovernance validates cfg and deploys the code registered for
// cfg.Kind.
func (f *GovernanceFactory) DeployGovernance(ctx context.Context, deployer address.Address, cfg GovernanceConfig) (address.Address, error) {
	rec, err := f.deploy(ctx, deployer, cfg.Kind, func() (deployment, error) {
		if err := cfg.Validate(); err != nil {
			return deployment{}, err
		}
		args, names, err := cfg.ctorArgs()
		if err != nil {
			return deployment{}, err
		}
		return deployment{
			salt:      cfg.Salt,
			principal: cfg.Admin,
			args:      args,
			argNames:  names,
		}, nil
	})
	return rec.Address, err
}

func (f *GovernanceFactory) SetMerkleVotingWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, MerkleVoting, h)
}

func (f *GovernanceFactory) SetMultisigWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Multisig, h)
}
