package factory

import (
	"context"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/scval"
)

const (
	DefaultNFTName          = "My Token"
	DefaultNFTSymbol        = "TKN"
	DefaultNFTBaseURI       = "www.mytoken.com"
	DefaultRoyaltiesBaseURI = "https://example.com/nft/"

	MaxBaseURI = 256
)

// NFTConfig is the tagged deploy request for an NFT collection. Owner is
// required for every kind and is the collection's principal. Royalties needs
// Admin and Manager; AccessControl needs Admin only; Enumerable takes
// neither.
type NFTConfig struct {
	Kind    NFTKind          `mapstructure:"kind" json:"kind"`
	Salt    address.Salt     `mapstructure:"salt" json:"salt"`
	Owner   address.Address  `mapstructure:"owner" json:"owner"`
	Admin   *address.Address `mapstructure:"admin" json:"admin,omitempty"`
	Manager *address.Address `mapstructure:"manager" json:"manager,omitempty"`
	Name    *string          `mapstructure:"name" json:"name,omitempty"`
	Symbol  *string          `mapstructure:"symbol" json:"symbol,omitempty"`
	BaseURI *string          `mapstructure:"base_uri" json:"base_uri,omitempty"`
}

// Validate checks cfg against the rules of its kind.
func (c NFTConfig) Validate() error {
	if !c.Kind.Valid() {
		return errs.InvalidField("kind", "unknown nft kind %d", uint8(c.Kind))
	}
	if err := requireAddress("owner", c.Owner); err != nil {
		return err
	}
	if c.Name != nil {
		if err := validateText("name", *c.Name, MaxTokenName); err != nil {
			return err
		}
	}
	if c.Symbol != nil {
		if err := validateText("symbol", *c.Symbol, MaxTokenSymbol); err != nil {
			return err
		}
	}
	if c.BaseURI != nil {
		if err := validateText("base_uri", *c.BaseURI, MaxBaseURI); err != nil {
			return err
		}
	}

	switch c.Kind {
	case Enumerable:
		if err := forbid("admin", c.Admin != nil, c.Kind.String()); err != nil {
			return err
		}
		return forbid("manager", c.Manager != nil, c.Kind.String())
	case Royalties:
		if c.Admin == nil {
			return errs.InvalidField("admin", "required for royalties collections")
		}
		if c.Manager == nil {
			return errs.InvalidField("manager", "required for royalties collections")
		}
		if err := optionalAddress("admin", c.Admin); err != nil {
			return err
		}
		return optionalAddress("manager", c.Manager)
	default:
		if c.Admin == nil {
			return errs.InvalidField("admin", "required for access control collections")
		}
		if err := optionalAddress("admin", c.Admin); err != nil {
			return err
		}
		return forbid("manager", c.Manager != nil, c.Kind.String())
	}
}

// Metadata returns name, symbol and base URI with the per-kind defaults
// applied.
func (c NFTConfig) Metadata() (name, symbol, baseURI string) {
	name, symbol, baseURI = DefaultNFTName, DefaultNFTSymbol, DefaultNFTBaseURI
	if c.Kind == Royalties {
		baseURI = DefaultRoyaltiesBaseURI
	}
	if c.Name != nil {
		name = *c.Name
	}
	if c.Symbol != nil {
		symbol = *c.Symbol
	}
	if c.BaseURI != nil {
		baseURI = *c.BaseURI
	}
	return name, symbol, baseURI
}

func (c NFTConfig) ctorArgs() ([]xdr.ScVal, []string, error) {
	name, symbol, baseURI := c.Metadata()
	meta := []xdr.ScVal{scval.FromString(baseURI), scval.FromString(name), scval.FromString(symbol)}
	metaNames := []string{"base_uri", "name", "symbol"}

	var (
		lead  []address.Address
		names []string
	)
	switch c.Kind {
	case Enumerable:
		lead, names = []address.Address{c.Owner}, []string{"owner"}
	case Royalties:
		lead, names = []address.Address{*c.Admin, *c.Manager}, []string{"admin", "manager"}
	default:
		lead, names = []address.Address{*c.Admin}, []string{"admin"}
	}

	args := make([]xdr.ScVal, 0, len(lead)+len(meta))
	for _, a := range lead {
		v, err := scval.FromAddress(a)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, v)
	}
	args = append(args, meta...)
	return args, append(names, metaNames...), nil
}

// NFTFactory deploys NFT collections. The principal of a collection is its
// owner.
type NFTFactory struct {
	*engine[NFTKind]
}

// NewNFTFactory creates an NFT factory administered by opts.Admin.
func NewNFTFactory(opts Options) (*NFTFactory, error) {
	e, err := newEngine[NFTKind]("nft", opts)
	if err != nil {
		return nil, err
	}
	return &NFTFactory{engine: e}, nil
}

// DeployNFT validates cfg and deploys the code registered for cfg.Kind.
func (f *NFTFactory) DeployNFT(ctx context.Context, deployer address.Address, cfg NFTConfig) (address.Address, error) {
	rec, err := f.deploy(ctx, deployer, cfg.Kind, func() (deployment, error) {
		if err := cfg.Validate(); err != nil {
			return deployment{}, err
		}
		args, names, err := cfg.ctorArgs()
		if err != nil {
			return deployment{}, err
		}
		name, symbol, _ := cfg.Metadata()
		return deployment{
			salt:      cfg.Salt,
			principal: cfg.Owner,
			name:      name,
			symbol:    symbol,
			args:      args,
			argNames:  names,
		}, nil
	})
	return rec.Address, err
}

func (f *NFTFactory) SetEnumerableWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Enumerable, h)
}

func (f *NFTFactory) SetRoyaltiesWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, Royalties, h)
}

func (f *NFTFactory) SetAccessControlWasm(caller address.Address, h address.Hash) error {
	return f.SetWasm(caller, AccessControl, h)
}
