package httpip

import "github.com/lc/myip/pkg/pubip"

// Ipify returns the ipify.org endpoints: the family-specific origins first,
// then the dual-stack one, which reports whichever family the connection
// used.
func Ipify() pubip.Resolver {
	return New([]Endpoint{
		{URL: "https://api.ipify.org", Method: PlainText, Version: pubip.V4},
		{URL: "https://api6.ipify.org", Method: PlainText, Version: pubip.V6},
		{URL: "https://api64.ipify.org", Method: PlainText, Version: pubip.Any},
	})
}

// Icanhazip returns the icanhazip.com family-specific endpoints.
func Icanhazip() pubip.Resolver {
	return New([]Endpoint{
		{URL: "https://ipv4.icanhazip.com", Method: PlainText, Version: pubip.V4},
		{URL: "https://ipv6.icanhazip.com", Method: PlainText, Version: pubip.V6},
	})
}

// All returns every builtin HTTP resolver, ipify first.
func All() pubip.Resolver {
	return pubip.Resolvers{Ipify(), Icanhazip()}
}
