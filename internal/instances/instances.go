// Package instances holds the constructors bound to uploaded code on the
// in-process host: the instance contracts deployed by the factories and the
// factory contracts deployed by the master.
package instances

import (
	"fmt"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
	"studio/internal/factory"
	"studio/internal/host"
	"studio/internal/scval"
)

// Token is the state of a deployed fungible token.
type Token struct {
	Kind          factory.TokenKind
	Admin         address.Address
	Manager       address.Address
	InitialSupply int64
	Cap           *int64
	Name          string
	Symbol        string
	Decimals      uint32
}

// Vault is the state of a deployed vault token.
type Vault struct {
	Asset          address.Address
	DecimalsOffset uint32
}

// NFT is the state of a deployed collection. Exactly one of Owner or Admin
// is set, depending on the kind.
type NFT struct {
	Kind    factory.NFTKind
	Owner   address.Address
	Admin   address.Address
	Manager address.Address
	BaseURI string
	Name    string
	Symbol  string
}

// MerkleVoting is the state of a deployed merkle voting contract.
type MerkleVoting struct {
	RootHash address.Hash
}

// Multisig is the state of a deployed multisig.
type Multisig struct {
	Admin     address.Address
	Owners    []address.Address
	Threshold uint32
}

// ForToken returns the constructor of the token contract of kind.
func ForToken(kind factory.TokenKind) host.Constructor {
	if kind == factory.Vault {
		return func(ic host.InstanceContext) (any, error) {
			if err := arity(ic.Args, 2); err != nil {
				return nil, err
			}
			asset, err := scval.ToAddress(ic.Args[0])
			if err != nil {
				return nil, fmt.Errorf("asset: %w", err)
			}
			offset, err := scval.ToU32(ic.Args[1])
			if err != nil {
				return nil, fmt.Errorf("decimals_offset: %w", err)
			}
			return &Vault{Asset: asset, DecimalsOffset: offset}, nil
		}
	}

	return func(ic host.InstanceContext) (any, error) {
		want := 6
		if kind == factory.Capped {
			want = 7
		}
		if err := arity(ic.Args, want); err != nil {
			return nil, err
		}

		t := &Token{Kind: kind}
		var err error
		if t.Admin, err = scval.ToAddress(ic.Args[0]); err != nil {
			return nil, fmt.Errorf("admin: %w", err)
		}
		if t.Manager, err = scval.ToAddress(ic.Args[1]); err != nil {
			return nil, fmt.Errorf("manager: %w", err)
		}
		if t.InitialSupply, err = scval.ToI128(ic.Args[2]); err != nil {
			return nil, fmt.Errorf("initial_supply: %w", err)
		}
		rest := ic.Args[3:]
		if kind == factory.Capped {
			c, err := scval.ToI128(rest[0])
			if err != nil {
				return nil, fmt.Errorf("cap: %w", err)
			}
			if t.InitialSupply > c {
				return nil, fmt.Errorf("initial supply %d exceeds cap %d", t.InitialSupply, c)
			}
			t.Cap = &c
			rest = rest[1:]
		}
		if t.Name, err = scval.ToString(rest[0]); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		if t.Symbol, err = scval.ToString(rest[1]); err != nil {
			return nil, fmt.Errorf("symbol: %w", err)
		}
		if t.Decimals, err = scval.ToU32(rest[2]); err != nil {
			return nil, fmt.Errorf("decimals: %w", err)
		}
		return t, nil
	}
}

// ForNFT returns the constructor of the NFT contract of kind.
func ForNFT(kind factory.NFTKind) host.Constructor {
	return func(ic host.InstanceContext) (any, error) {
		lead := 1
		if kind == factory.Royalties {
			lead = 2
		}
		if err := arity(ic.Args, lead+3); err != nil {
			return nil, err
		}

		n := &NFT{Kind: kind}
		first, err := scval.ToAddress(ic.Args[0])
		if err != nil {
			return nil, fmt.Errorf("arg 0: %w", err)
		}
		if kind == factory.Enumerable {
			n.Owner = first
		} else {
			n.Admin = first
		}
		if kind == factory.Royalties {
			if n.Manager, err = scval.ToAddress(ic.Args[1]); err != nil {
				return nil, fmt.Errorf("manager: %w", err)
			}
		}

		meta := ic.Args[lead:]
		if n.BaseURI, err = scval.ToString(meta[0]); err != nil {
			return nil, fmt.Errorf("base_uri: %w", err)
		}
		if n.Name, err = scval.ToString(meta[1]); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		if n.Symbol, err = scval.ToString(meta[2]); err != nil {
			return nil, fmt.Errorf("symbol: %w", err)
		}
		return n, nil
	}
}

// ForGovernance returns the constructor of the governance contract of kind.
func ForGovernance(kind factory.GovernanceKind) host.Constructor {
	if kind == factory.MerkleVoting {
		return func(ic host.InstanceContext) (any, error) {
			if err := arity(ic.Args, 1); err != nil {
				return nil, err
			}
			root, err := scval.ToBytes32(ic.Args[0])
			if err != nil {
				return nil, fmt.Errorf("root_hash: %w", err)
			}
			return &MerkleVoting{RootHash: root}, nil
		}
	}

	return func(ic host.InstanceContext) (any, error) {
		if err := arity(ic.Args, 3); err != nil {
			return nil, err
		}
		m := &Multisig{}
		var err error
		if m.Admin, err = scval.ToAddress(ic.Args[0]); err != nil {
			return nil, fmt.Errorf("admin: %w", err)
		}
		vec, err := scval.ToVec(ic.Args[1])
		if err != nil {
			return nil, fmt.Errorf("owners: %w", err)
		}
		for i, v := range vec {
			o, err := scval.ToAddress(v)
			if err != nil {
				return nil, fmt.Errorf("owners[%d]: %w", i, err)
			}
			m.Owners = append(m.Owners, o)
		}
		if m.Threshold, err = scval.ToU32(ic.Args[2]); err != nil {
			return nil, fmt.Errorf("threshold: %w", err)
		}
		if m.Threshold == 0 || int(m.Threshold) > len(m.Owners) {
			return nil, fmt.Errorf("threshold %d out of range for %d owners", m.Threshold, len(m.Owners))
		}
		return m, nil
	}
}

func arity(args []xdr.ScVal, want int) error {
	if len(args) != want {
		return fmt.Errorf("expected %d constructor arguments, got %d", want, len(args))
	}
	return nil
}
