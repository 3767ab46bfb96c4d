// Package crate implements the name grammar, SemVer wrapping, and index
// path mapping that the rest of the registry builds on (spec.md §3, §4.1).
package crate

import (
	"fmt"

	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// Name is a validated crate name. The zero value is not valid; use Parse.
type Name struct {
	s string
}

// Parse validates s against the crate name grammar: non-empty, first
// character in [a-z], all characters in [0-9a-z_-].
func Parse(s string) (Name, error) {
	if len(s) == 0 {
		return Name{}, regerr.New("crate.Parse", regerr.InvalidName, fmt.Errorf("empty name"))
	}
	if !isLowerAlpha(s[0]) {
		return Name{}, regerr.New("crate.Parse", regerr.InvalidName, fmt.Errorf("name %q must start with [a-z]", s))
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return Name{}, regerr.New("crate.Parse", regerr.InvalidName, fmt.Errorf("name %q contains invalid character %q", s, s[i]))
		}
	}
	return Name{s: s}, nil
}

func isLowerAlpha(b byte) bool { return b >= 'a' && b <= 'z' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isNameByte(b byte) bool {
	return isLowerAlpha(b) || isDigit(b) || b == '_' || b == '-'
}

// String returns the underlying name.
func (n Name) String() string { return n.s }

// Less reports whether n sorts before o, lexicographically.
func (n Name) Less(o Name) bool { return n.s < o.s }

// Equal reports whether n and o name the same crate. Defined so cmp.Diff
// can compare values containing a Name without reflecting into its
// unexported field.
func (n Name) Equal(o Name) bool { return n.s == o.s }

// MarshalText implements encoding.TextMarshaler, so a Name can be used
// directly as a JSON string field.
func (n Name) MarshalText() ([]byte, error) { return []byte(n.s), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
