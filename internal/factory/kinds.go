package factory

import (
	"fmt"
	"strings"
)

// Kind is the closed set of contract kinds a factory can deploy.
type Kind interface {
	comparable
	fmt.Stringer
	Valid() bool
}

// TokenKind selects the token contract a TokenFactory deploys.
type TokenKind uint8

const (
	Allowlist TokenKind = iota
	Blocklist
	Capped
	Pausable
	Vault
)

// TokenKinds lists every token kind in declaration order.
var TokenKinds = []TokenKind{Allowlist, Blocklist, Capped, Pausable, Vault}

var tokenKindNames = [...]string{"allowlist", "blocklist", "capped", "pausable", "vault"}

func (k TokenKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
	return tokenKindNames[k]
}

func (k TokenKind) Valid() bool {
	return int(k) < len(tokenKindNames)
}

// ParseTokenKind accepts the kind name in any case, with or without
// separators ("Pausable", "pausable").
func ParseTokenKind(s string) (TokenKind, error) {
	i, err := parseKind(s, tokenKindNames[:])
	if err != nil {
		return 0, fmt.Errorf("token kind: %w", err)
	}
	return TokenKind(i), nil
}

func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TokenKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTokenKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// NFTKind selects the NFT contract an NFTFactory deploys.
type NFTKind uint8

const (
	Enumerable NFTKind = iota
	Royalties
	AccessControl
)

// NFTKinds lists every NFT kind in declaration order.
var NFTKinds = []NFTKind{Enumerable, Royalties, AccessControl}

var nftKindNames = [...]string{"enumerable", "royalties", "access_control"}

func (k NFTKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("NFTKind(%d)", uint8(k))
	}
	return nftKindNames[k]
}

func (k NFTKind) Valid() bool {
	return int(k) < len(nftKindNames)
}

// ParseNFTKind accepts "AccessControl", "access_control" and similar.
func ParseNFTKind(s string) (NFTKind, error) {
	i, err := parseKind(s, nftKindNames[:])
	if err != nil {
		return 0, fmt.Errorf("nft kind: %w", err)
	}
	return NFTKind(i), nil
}

func (k NFTKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *NFTKind) UnmarshalText(text []byte) error {
	parsed, err := ParseNFTKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// GovernanceKind selects the governance contract a GovernanceFactory deploys.
type GovernanceKind uint8

const (
	MerkleVoting GovernanceKind = iota
	Multisig
)

// GovernanceKinds lists every governance kind in declaration order.
var GovernanceKinds = []GovernanceKind{MerkleVoting, Multisig}

var governanceKindNames = [...]string{"merkle_voting", "multisig"}

func (k GovernanceKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("GovernanceKind(%d)", uint8(k))
	}
	return governanceKindNames[k]
}

func (k GovernanceKind) Valid() bool {
	return int(k) < len(governanceKindNames)
}

func ParseGovernanceKind(s string) (GovernanceKind, error) {
	i, err := parseKind(s, governanceKindNames[:])
	if err != nil {
		return 0, fmt.Errorf("governance kind: %w", err)
	}
	return GovernanceKind(i), nil
}

func (k GovernanceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *GovernanceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseGovernanceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func parseKind(s string, names []string) (int, error) {
	want := normalizeKind(s)
	for i, name := range names {
		if normalizeKind(name) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

func normalizeKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}
