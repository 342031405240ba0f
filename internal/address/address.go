// Package address holds the identity types shared by every factory: strkey
// addresses, deployment salts and content hashes, plus the deterministic
// contract address derivation used by the deployer.
package address

import (
	"encoding/hex"
	"fmt"

	"github.com/stellar/go/hash"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// Address is a Stellar strkey: a G... account or a C... contract.
type Address string

// Parse validates s as an account or contract strkey.
func Parse(s string) (Address, error) {
	if _, err := strkey.Decode(strkey.VersionByteAccountID, s); err == nil {
		return Address(s), nil
	}
	if _, err := strkey.Decode(strkey.VersionByteContract, s); err == nil {
		return Address(s), nil
	}
	return "", fmt.Errorf("invalid address %q", s)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ""
}

// IsContract reports whether the address is a C... contract strkey.
func (a Address) IsContract() bool {
	_, err := strkey.Decode(strkey.VersionByteContract, string(a))
	return err == nil
}

// Valid reports whether the address decodes as an account or contract strkey.
func (a Address) Valid() bool {
	_, err := Parse(string(a))
	return err == nil
}

// ScAddress converts the strkey into its XDR form for constructor arguments
// and contract id preimages.
func (a Address) ScAddress() (xdr.ScAddress, error) {
	if raw, err := strkey.Decode(strkey.VersionByteContract, string(a)); err == nil {
		var cid xdr.ContractId
		copy(cid[:], raw)
		return xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &cid,
		}, nil
	}

	var aid xdr.AccountId
	if err := aid.SetAddress(string(a)); err != nil {
		return xdr.ScAddress{}, fmt.Errorf("invalid address %q: %w", a, err)
	}
	return xdr.ScAddress{
		Type:      xdr.ScAddressTypeScAddressTypeAccount,
		AccountId: &aid,
	}, nil
}

// FromContractID encodes a raw 32-byte contract id as a C... strkey.
func FromContractID(id [32]byte) (Address, error) {
	s, err := strkey.Encode(strkey.VersionByteContract, id[:])
	if err != nil {
		return "", fmt.Errorf("failed to encode contract id: %w", err)
	}
	return Address(s), nil
}

// NetworkID returns the network id for a passphrase.
func NetworkID(passphrase string) [32]byte {
	return network.ID(passphrase)
}

// Derive computes the address a contract deployed by owner with salt will
// receive: sha256 of the XDR HashIdPreimage for a from-address contract id.
// The result depends only on (networkID, owner, salt).
func Derive(networkID [32]byte, owner Address, salt Salt) (Address, error) {
	scAddr, err := owner.ScAddress()
	if err != nil {
		return "", err
	}

	preimage := xdr.HashIdPreimage{
		Type: xdr.EnvelopeTypeEnvelopeTypeContractId,
		ContractId: &xdr.HashIdPreimageContractId{
			NetworkId: xdr.Hash(networkID),
			ContractIdPreimage: xdr.ContractIdPreimage{
				Type: xdr.ContractIdPreimageTypeContractIdPreimageFromAddress,
				FromAddress: &xdr.ContractIdPreimageFromAddress{
					Address: scAddr,
					Salt:    xdr.Uint256(salt),
				},
			},
		},
	}

	raw, err := preimage.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to marshal contract id preimage: %w", err)
	}
	return FromContractID(hash.Hash(raw))
}

// DecodeHex returns the raw bytes behind a C... or G... strkey as hex.
func DecodeHex(a Address) (string, error) {
	if raw, err := strkey.Decode(strkey.VersionByteContract, string(a)); err == nil {
		return hex.EncodeToString(raw), nil
	}
	raw, err := strkey.Decode(strkey.VersionByteAccountID, string(a))
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", a, err)
	}
	return hex.EncodeToString(raw), nil
}

// FromAccountKey encodes an ed25519 public key as a G... strkey.
func FromAccountKey(key [32]byte) (Address, error) {
	s, err := strkey.Encode(strkey.VersionByteAccountID, key[:])
	if err != nil {
		return "", fmt.Errorf("failed to encode account key: %w", err)
	}
	return Address(s), nil
}
