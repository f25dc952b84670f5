package pubip

import "net/netip"

// Version selects which family of IP address a resolution attempt should
// produce.
type Version int

const (
	// Any accepts an address of either family.
	Any Version = iota
	// V4 accepts IPv4 addresses only.
	V4
	// V6 accepts IPv6 addresses only.
	V6
)

// Matches reports whether addr belongs to the family v requests.
// IPv4-mapped IPv6 addresses count as IPv4.
func (v Version) Matches(addr netip.Addr) bool {
	switch v {
	case V4:
		return addr.Is4() || addr.Is4In6()
	case V6:
		return addr.Is6() && !addr.Is4In6()
	default:
		return addr.IsValid()
	}
}

// String returns a human-readable name for the version.
func (v Version) String() string {
	switch v {
	case V4:
		return "IPv4"
	case V6:
		return "IPv6"
	default:
		return "any"
	}
}
