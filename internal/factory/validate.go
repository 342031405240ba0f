package factory

import (
	"unicode/utf8"

	"studio/internal/address"
	"studio/internal/errs"
)

// validateText checks a name-like field: 1..max bytes, valid UTF-8, and no
// control characters other than tab, LF and CR.
func validateText(field, s string, max int) error {
	if len(s) == 0 {
		return errs.InvalidField(field, "required")
	}
	if len(s) > max {
		return errs.InvalidField(field, "longer than %d bytes", max)
	}
	if !utf8.ValidString(s) {
		return errs.InvalidField(field, "not valid UTF-8")
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == 0 || (b < 32 && b != '\t' && b != '\n' && b != '\r') {
			return errs.InvalidField(field, "contains control character 0x%02x", b)
		}
	}
	return nil
}

func requireAddress(field string, a address.Address) error {
	if a.IsZero() {
		return errs.InvalidField(field, "required")
	}
	if !a.Valid() {
		return errs.InvalidField(field, "%q is not an address", a)
	}
	return nil
}

func optionalAddress(field string, a *address.Address) error {
	if a == nil {
		return nil
	}
	return requireAddress(field, *a)
}

func forbid(field string, present bool, kind string) error {
	if present {
		return errs.InvalidField(field, "not allowed for %s", kind)
	}
	return nil
}
