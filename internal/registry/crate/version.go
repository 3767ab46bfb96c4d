package crate

import (
	"github.com/Masterminds/semver/v3"

	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// Version wraps a parsed SemVer 2.0 version, ordered per semver.Version's
// Compare, which implements SemVer 2.0 precedence: a pre-release sorts
// before its release, and build metadata is ignored.
type Version struct {
	v *semver.Version
}

// ParseVersion parses a MAJOR.MINOR.PATCH version with optional pre-release
// and build metadata.
func ParseVersion(s string) (Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, regerr.New("crate.ParseVersion", regerr.InvalidVersion, err)
	}
	return Version{v: v}, nil
}

// String renders the version the way it was parsed (original form).
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// Less reports whether v sorts strictly before o in SemVer precedence.
func (v Version) Less(o Version) bool { return v.v.Compare(o.v) < 0 }

// Equal reports whether v and o have identical SemVer precedence. Defined
// so cmp.Diff can compare values containing a Version without reflecting
// into its unexported field.
func (v Version) Equal(o Version) bool { return v.v.Compare(o.v) == 0 }

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := ParseVersion(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// VersionReq is a SemVer requirement expression, e.g. "^0.6" or ">=1.0, <2.0".
type VersionReq struct {
	raw string
	c   *semver.Constraints
}

// ParseVersionReq parses a requirement expression.
func ParseVersionReq(s string) (VersionReq, error) {
	c, err := semver.NewConstraint(s)
	if err != nil {
		return VersionReq{}, regerr.New("crate.ParseVersionReq", regerr.InvalidVersion, err)
	}
	return VersionReq{raw: s, c: c}, nil
}

// Matches reports whether v satisfies the requirement.
func (r VersionReq) Matches(v Version) bool { return r.c.Check(v.v) }

func (r VersionReq) String() string { return r.raw }

// Equal reports whether r and o were parsed from the same requirement
// expression. Defined so cmp.Diff can compare values containing a
// VersionReq without reflecting into its unexported fields.
func (r VersionReq) Equal(o VersionReq) bool { return r.raw == o.raw }

// MarshalText implements encoding.TextMarshaler.
func (r VersionReq) MarshalText() ([]byte, error) { return []byte(r.raw), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *VersionReq) UnmarshalText(b []byte) error {
	parsed, err := ParseVersionReq(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
