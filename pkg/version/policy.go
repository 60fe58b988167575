package version

// Verdict is the result of checking a version against a Policy.
type Verdict int

const (
	// Supported: the version is within range.
	Supported Verdict = iota

	// TooOld: the version is below the minimum.
	TooOld

	// TooNew: the version is above the maximum.
	TooNew
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case Supported:
		return "Supported"
	case TooOld:
		return "TooOld"
	case TooNew:
		return "TooNew"
	default:
		return "Unknown"
	}
}

// Range is an inclusive version range. A zero bound is unbounded.
type Range struct {
	Min Version
	Max Version
}

// Check classifies v against the range.
func (r Range) Check(v Version) Verdict {
	if !r.Min.IsZero() && v.Compare(r.Min) < 0 {
		return TooOld
	}
	if !r.Max.IsZero() && v.Compare(r.Max) > 0 {
		return TooNew
	}
	return Supported
}

// Policy is the server-side version policy applied to handshake requests
// before any verifier runs. A nil *Policy accepts every version.
type Policy struct {
	// Protocol bounds the handshake protocol version.
	Protocol Range

	// Client bounds the game client build version.
	Client Range
}

// DefaultPolicy accepts any protocol version compatible with Current and
// any client version.
func DefaultPolicy() *Policy {
	cur := MustParse(Current)
	return &Policy{
		Protocol: Range{
			Min: Version{Major: cur.Major},
			Max: Version{Major: cur.Major, Minor: 255},
		},
	}
}

// Check applies the policy to a request's protocol and client versions.
// The protocol range is checked first.
func (p *Policy) Check(proto, client Version) Verdict {
	if p == nil {
		return Supported
	}
	if v := p.Protocol.Check(proto); v != Supported {
		return v
	}
	return p.Client.Check(client)
}
