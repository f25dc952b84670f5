package dnsip

import (
	"net/netip"

	"github.com/lc/myip/pkg/pubip"
)

const (
	_opendnsName = "myip.opendns.com"
	_googleName  = "o-o.myaddr.l.google.com"
)

// OpenDNS returns the OpenDNS resolvers: myip.opendns.com queried as an A
// record over the IPv4 servers, and as an AAAA record over the IPv6
// servers.
func OpenDNS() pubip.Resolver {
	return pubip.Resolvers{
		New(_opendnsName, []netip.Addr{
			netip.MustParseAddr("208.67.222.222"),
			netip.MustParseAddr("208.67.220.220"),
			netip.MustParseAddr("208.67.222.220"),
			netip.MustParseAddr("208.67.220.222"),
		}, A),
		New(_opendnsName, []netip.Addr{
			netip.MustParseAddr("2620:0:ccc::2"),
			netip.MustParseAddr("2620:0:ccd::2"),
		}, AAAA),
	}
}

// Google returns the Google resolvers: o-o.myaddr.l.google.com queried as a
// TXT record against the ns[1-4].google.com nameservers.
func Google() pubip.Resolver {
	return pubip.Resolvers{
		New(_googleName, []netip.Addr{
			netip.MustParseAddr("216.239.32.10"),
			netip.MustParseAddr("216.239.34.10"),
			netip.MustParseAddr("216.239.36.10"),
			netip.MustParseAddr("216.239.38.10"),
		}, TXT),
		New(_googleName, []netip.Addr{
			netip.MustParseAddr("2001:4860:4802:32::a"),
			netip.MustParseAddr("2001:4860:4802:34::a"),
			netip.MustParseAddr("2001:4860:4802:36::a"),
			netip.MustParseAddr("2001:4860:4802:38::a"),
		}, TXT),
	}
}

// All returns every builtin DNS resolver, OpenDNS first.
func All() pubip.Resolver {
	return pubip.Resolvers{OpenDNS(), Google()}
}
