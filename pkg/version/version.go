// Package version provides protocol and client version parsing, comparison,
// ALPN helpers and the optional server-side version policy.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the handshake protocol version implemented by this library.
const Current = "1.0"

// alpnPrefix prefixes the major protocol version in the ALPN identifier.
const alpnPrefix = "iyesmp-auth/"

// Version is a parsed "major.minor" version. It is used both for the
// handshake protocol version and for the game client build version.
type Version struct {
	Major uint8
	Minor uint8
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || parts[1] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return Version{Major: uint8(major), Minor: uint8(minor)}, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0 or +1 depending on whether v is older than, equal
// to, or newer than other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major < other.Major:
		return -1
	case v.Major > other.Major:
		return 1
	case v.Minor < other.Minor:
		return -1
	case v.Minor > other.Minor:
		return 1
	default:
		return 0
	}
}

// Compatible returns true if the other version has the same major version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// IsZero reports whether v is the zero version "0.0".
func (v Version) IsZero() bool {
	return v == Version{}
}

// ALPNProtocol returns the ALPN protocol string for a major version:
// "iyesmp-auth/N".
func ALPNProtocol(major uint8) string {
	return fmt.Sprintf("%s%d", alpnPrefix, major)
}

// MajorFromALPN extracts the major version from an ALPN protocol string.
func MajorFromALPN(alpn string) (uint8, error) {
	if !strings.HasPrefix(alpn, alpnPrefix) {
		return 0, fmt.Errorf("not an iyesmp-auth ALPN protocol: %q", alpn)
	}

	suffix := alpn[len(alpnPrefix):]
	if suffix == "" {
		return 0, fmt.Errorf("empty major version in ALPN: %q", alpn)
	}

	major, err := strconv.ParseUint(suffix, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid major version in ALPN %q: %w", alpn, err)
	}

	return uint8(major), nil
}

// SupportedALPNProtocols returns the ALPN protocol strings for all supported
// major versions. Currently only major version 1.
func SupportedALPNProtocols() []string {
	return []string{ALPNProtocol(MustParse(Current).Major)}
}
