package factory

import (
	"context"
	"math"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/scval"
)

const (
	MaxTokenName   = 30
	MaxTokenSymbol = 12
	MaxDecimals    = 18

	// MaxSupply bounds initial supply and cap.
	MaxSupply int64 = math.MaxInt64 / 2
)

// TokenConfig is the tagged deploy request for a token. Cap applies to
// Capped only; Asset and DecimalsOffset apply to Vault only.
type TokenConfig struct {
	Kind           TokenKind        `mapstructure:"kind" json:"kind"`
	Salt           address.Salt     `mapstructure:"salt" json:"salt"`
	Admin          address.Address  `mapstructure:"admin" json:"admin"`
	Manager        address.Address  `mapstructure:"manager" json:"manager"`
	Name           string           `mapstructure:"name" json:"name"`
	Symbol         string           `mapstructure:"symbol" json:"symbol"`
	Decimals       uint32           `mapstructure:"decimals" json:"decimals"`
	InitialSupply  int64            `mapstructure:"initial_supply" json:"initial_supply"`
	Cap            *int64           `mapstructure:"cap" json:"cap,omitempty"`
	Asset          *address.Address `mapstructure:"asset" json:"asset,omitempty"`
	DecimalsOffset *uint32          `mapstructure:"decimals_offset" json:"decimals_offset,omitempty"`
}

// WithDefaults returns c with an empty Manager set to Admin. Vault tokens
// carry no manager and are returned unchanged.
func (c TokenConfig) WithDefaults() TokenConfig {
	if c.Kind != Vault && c.Manager.IsZero() {
		c.Manager = c.Admin
	}
	return c
}

// Validate checks the fields shared by every token kind and then the
// kind-specific ones. An empty Manager defaults to Admin.
func (c TokenConfig) Validate() error {
	c = c.WithDefaults()
	if !c.Kind.Valid() {
		return errs.InvalidField("kind", "unknown token kind %d", uint8(c.Kind))
	}
	if err := requireAddress("admin", c.Admin); err != nil {
		return err
	}
	if c.Kind != Vault || !c.Manager.IsZero() {
		if err := requireAddress("manager", c.Manager); err != nil {
			return err
		}
	}
	if err := validateText("name", c.Name, MaxTokenName); err != nil {
		return err
	}
	if err := validateText("symbol", c.Symbol, MaxTokenSymbol); err != nil {
		return err
	}
	if c.Decimals > MaxDecimals {
		return errs.InvalidField("decimals", "%d exceeds %d", c.Decimals, MaxDecimals)
	}
	if c.InitialSupply < 0 {
		return errs.InvalidField("initial_supply", "negative")
	}
	if c.InitialSupply > MaxSupply {
		return errs.InvalidField("initial_supply", "exceeds maximum supply")
	}

	vaultFields := c.Asset != nil || c.DecimalsOffset != nil
	switch c.Kind {
	case Capped:
		if c.Cap == nil {
			return errs.InvalidField("cap", "required for capped tokens")
		}
		if *c.Cap <= 0 {
			return errs.InvalidField("cap", "must be positive")
		}
		if *c.Cap > MaxSupply {
			return errs.InvalidField("cap", "exceeds maximum supply")
		}
		if c.InitialSupply > *c.Cap {
			return errs.InvalidField("initial_supply", "exceeds cap")
		}
		return forbid("asset", vaultFields, c.Kind.String())
	case Vault:
		if c.Asset == nil {
			return errs.InvalidField("asset", "required for vault tokens")
		}
		if err := optionalAddress("asset", c.Asset); err != nil {
			return err
		}
		if c.DecimalsOffset == nil {
			return errs.InvalidField("decimals_offset", "required for vault tokens")
		}
		return forbid("cap", c.Cap != nil, c.Kind.String())
	default:
		if err := forbid("cap", c.Cap != nil, c.Kind.String()); err != nil {
			return err
		}
		return forbid("asset", vaultFields, c.Kind.String())
	}
}

// ctorArgs maps a validated config to the token constructor's positional
// arguments.
func (c TokenConfig) ctorArgs() ([]xdr.ScVal, []string, error) {
	if c.Kind == Vault {
		asset, err := scval.FromAddress(*c.Asset)
		if err != nil {
			return nil, nil, err
		}
		args := []xdr.ScVal{asset, scval.FromU32(*c.DecimalsOffset)}
		return args, []string{"asset", "decimals_offset"}, nil
	}

	adm, err := scval.FromAddress(c.Admin)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := scval.FromAddress(c.Manager)
	if err != nil {
		return nil, nil, err
	}

	if c.Kind == Capped {
		args := []xdr.ScVal{
			adm,
			mgr,
			scval.FromI128(c.InitialSupply),
			scval.FromI128(*c.Cap),
			scval.FromString(c.Name),
			scval.FromString(c.Symbol),
			scval.FromU32(c.Decimals),
		}
		return args, []string{"admin", "manager", "initial_supply", "cap", "name", "symbol", "decimals"}, nil
	}
	args := []xdr.ScVal{
		adm,
		mgr,
		scval.FromI128(c.InitialSupply),
		scval.FromString(c.Name),
		scval.FromString(c.Symbol),
		scval.FromU32(c.Decimals),
	}
	return args, []string{"admin", "manager", "initial_supply", "name", "symbol", "decimals"}, nil
}

// TokenFactory deploys token contracts. The principal of a token is its
// admin.
type TokenFactory struct {
	*engine[TokenKind]
}

// NewTokenFactory creates a token factory administered by opts.Admin.
func NewTokenFactory(opts Options) (*TokenFactory, error) {
	e, err := newEngine[TokenKind]("token", opts)
	if err != nil {
		return nil, err
	}
	return &TokenFactory{engine: e}, nil
}

// DeployToken validates cfg and deploys the code registered for cfg.Kind at
// the address derived from cfg.Salt.
func (f *TokenFactory) DeployToken(ctx context.Context, deployer address.Address, cfg TokenConfig) (address.Address, error) {
	cfg = cfg.WithDefaults()
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
			name:      cfg.Name,
			symbol:    cfg.Symbol,
			args:      args,
			argNames:  names,
		}, nil
	})
	return rec.Address, err
}

func (f *TokenFactory) SetAllowlistWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Allowlist, h)
}

func (f *TokenFactory) SetBlocklistWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Blocklist, h)
}

func (f *TokenFactory) SetCappedWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Capped, h)
}

func (f *TokenFactory) SetPausableWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Pausable, h)
}

func (f *TokenFactory) SetVaultWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Vault, h)
}
