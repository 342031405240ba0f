// Package addrtest builds deterministic addresses for tests.
package addrtest

import (
	"studio/internal/address"
)

// Account returns the G... address whose key is filled with b.
func Account(b byte) address.Address {
	var key [32]byte
	for i := range key {
		key[i] = b
	}
	a, err := address.FromAccountKey(key)
	if err != nil {
		panic(err)
	}
	return a
}

// Contract returns the C... address whose id is filled with b.
func Contract(b byte) address.Address {
	var id [32]byte
	for i := range id {
		id[i] = b
	}
	a, err := address.FromContractID(id)
	if err != nil {
		panic(err)
	}
	return a
}
