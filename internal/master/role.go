package master

import (
	"fmt"
	"strings"
)

// Role is a slot in the factory directory.
type Role uint8

const (
	RoleToken Role = iota
	RoleNFT
	RoleGovernance
)

// Roles lists every role in directory order.
var Roles = []Role{RoleToken, RoleNFT, RoleGovernance}

var roleNames = [...]string{"token", "nft", "governance"}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
	return roleNames[r]
}

func (r Role) Valid() bool {
	return int(r) < len(roleNames)
}

// ParseRole accepts "token", "nft" or "governance" in any case.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range roleNames {
		if name == s {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown factory role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
