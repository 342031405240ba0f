// Package scval builds and reads the Soroban values passed to instance
// constructors.
package scval

import (
	"fmt"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
)

// FromAddress encodes a strkey as an ScvAddress.
func FromAddress(a address.Address) (xdr.ScVal, error) {
	sc, err := a.ScAddress()
	if err != nil {
		return xdr.ScVal{}, err
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &sc}, nil
}

// FromString encodes s as an ScvString.
func FromString(s string) xdr.ScVal {
	str := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}
}

// FromU32 encodes v as an ScvU32.
func FromU32(v uint32) xdr.ScVal {
	u := xdr.Uint32(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

// FromI128 encodes v as an ScvI128, sign-extending into the high word.
func FromI128(v int64) xdr.ScVal {
	hi := xdr.Int64(0)
	if v < 0 {
		hi = -1
	}
	parts := xdr.Int128Parts{Hi: hi, Lo: xdr.Uint64(uint64(v))}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

// FromBytes32 encodes b as ScvBytes.
func FromBytes32(b [32]byte) xdr.ScVal {
	bytes := xdr.ScBytes(b[:])
	return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &bytes}
}

// FromVec wraps vals in an ScvVec.
func FromVec(vals []xdr.ScVal) xdr.ScVal {
	vec := xdr.ScVec(vals)
	ptr := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &ptr}
}

// FromAddresses encodes a list of strkeys as an ScvVec of addresses.
func FromAddresses(addrs []address.Address) (xdr.ScVal, error) {
	vals := make([]xdr.ScVal, 0, len(addrs))
	for _, a := range addrs {
		v, err := FromAddress(a)
		if err != nil {
			return xdr.ScVal{}, err
		}
		vals = append(vals, v)
	}
	return FromVec(vals), nil
}

// ToAddress reads an ScvAddress.
func ToAddress(val xdr.ScVal) (address.Address, error) {
	sc, ok := val.GetAddress()
	if !ok {
		return "", typeError("address", val)
	}
	s, err := sc.String()
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	return address.Address(s), nil
}

// ToString reads an ScvString.
func ToString(val xdr.ScVal) (string, error) {
	s, ok := val.GetStr()
	if !ok {
		return "", typeError("string", val)
	}
	return string(s), nil
}

// ToU32 reads an ScvU32.
func ToU32(val xdr.ScVal) (uint32, error) {
	u, ok := val.GetU32()
	if !ok {
		return 0, typeError("u32", val)
	}
	return uint32(u), nil
}

// ToI128 reads an ScvI128 that fits in an int64.
func ToI128(val xdr.ScVal) (int64, error) {
	parts, ok := val.GetI128()
	if !ok {
		return 0, typeError("i128", val)
	}
	lo := int64(parts.Lo)
	if (parts.Hi == 0 && lo >= 0) || (parts.Hi == -1 && lo < 0) {
		return lo, nil
	}
	return 0, fmt.Errorf("i128 value out of int64 range")
}

// ToBytes32 reads 32 bytes of ScvBytes.
func ToBytes32(val xdr.ScVal) ([32]byte, error) {
	var out [32]byte
	b, ok := val.GetBytes()
	if !ok {
		return out, typeError("bytes", val)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// ToVec reads an ScvVec.
func ToVec(val xdr.ScVal) ([]xdr.ScVal, error) {
	vec, ok := val.GetVec()
	if !ok || vec == nil {
		return nil, typeError("vec", val)
	}
	return []xdr.ScVal(*vec), nil
}

func typeError(want string, val xdr.ScVal) error {
	return fmt.Errorf("expected %s, got %s", want, val.Type.String())
}
