package address

import (
	"encoding/hex"
	"fmt"

	"github.com/stellar/go/hash"
)

// Hash is the content hash of an uploaded code artifact.
type Hash [32]byte

// HashCode returns the content hash of code.
func HashCode(code []byte) Hash {
	return Hash(hash.Hash(code))
}

// ParseHash decodes a 64 character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if err := decodeHex32(s, h[:]); err != nil {
		return Hash{}, fmt.Errorf("invalid hash: %w", err)
	}
	return h, nil
}

// IsZero reports whether h is the all-zero hash, which never names code.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Salt is the caller-chosen input combined with a factory address to derive
// an instance address.
type Salt [32]byte

// ParseSalt decodes a 64 character hex string.
func ParseSalt(s string) (Salt, error) {
	var salt Salt
	if err := decodeHex32(s, salt[:]); err != nil {
		return Salt{}, fmt.Errorf("invalid salt: %w", err)
	}
	return salt, nil
}

// SaltFromSeed derives a salt from a human readable seed.
func SaltFromSeed(seed string) Salt {
	return Salt(hash.Hash([]byte(seed)))
}

func (s Salt) String() string {
	return hex.EncodeToString(s[:])
}

func (s Salt) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Salt) UnmarshalText(text []byte) error {
	parsed, err := ParseSalt(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func decodeHex32(s string, dst []byte) error {
	if len(s) != 64 {
		return fmt.Errorf("expected 64 hex characters, got %d", len(s))
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return err
	}
	return nil
}
