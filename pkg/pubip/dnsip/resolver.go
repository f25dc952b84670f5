// Package dnsip resolves the caller's public IP address by querying DNS
// servers that echo the client's address back to it, such as OpenDNS's
// myip.opendns.com and Google's o-o.myaddr.l.google.com.
//
// The package is a strategy adapter for pkg/pubip: a Resolver holds a fixed
// list of servers for one query name and method, filters that list by the
// requested address family before any query is sent, and falls back from
// server to server using the same combinator that drives the top-level
// strategy list.
package dnsip

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/lc/myip/pkg/pubip"
)

// DefaultPort is the port queries are sent to unless overridden.
const DefaultPort = 53

const _defaultTimeout = 5 * time.Second

// QueryMethod selects how the caller's address is extracted from a DNS
// answer.
type QueryMethod int

const (
	// A extracts the first A record as the caller's IPv4 address.
	A QueryMethod = iota
	// AAAA extracts the first AAAA record as the caller's IPv6 address.
	AAAA
	// TXT parses the first TXT string as the caller's IP address.
	TXT
)

// String returns the record type name of the method.
func (m QueryMethod) String() string {
	switch m {
	case AAAA:
		return "AAAA"
	case TXT:
		return "TXT"
	default:
		return "A"
	}
}

func (m QueryMethod) qtype() uint16 {
	switch m {
	case AAAA:
		return dns.TypeAAAA
	case TXT:
		return dns.TypeTXT
	default:
		return dns.TypeA
	}
}

// Details is the evidence attached to a successful DNS resolution.
type Details struct {
	Server string // host:port the answer came from
	Name   string // name that was queried
	Method QueryMethod
}

// Strategy implements pubip.Details.
func (Details) Strategy() string { return "dns" }

// Exchanger is the part of *dns.Client the resolver needs. Tests substitute
// a mock.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (r *dns.Msg, rtt time.Duration, err error)
}

// Resolver queries a fixed, ordered list of DNS servers that echo the
// caller's public address. Each server is a single attempt; the list is
// filtered by the requested version before any query is sent, so a request
// for IPv4 never contacts an IPv6-only server.
//
// A Resolver holds configuration only and is safe to share across
// concurrent resolution attempts. Construct with New; the zero value is not
// usable.
type Resolver struct {
	name    string
	servers []netip.Addr
	port    uint16
	method  QueryMethod
	client  Exchanger
}

var _ pubip.Resolver = (*Resolver)(nil)

// Opt is a function option for configuring the Resolver.
type Opt func(r *Resolver)

// WithPort returns an option to query a port other than DefaultPort.
func WithPort(port uint16) Opt {
	return func(r *Resolver) {
		r.port = port
	}
}

// WithClient returns an option to substitute the DNS exchange
// implementation, typically a *dns.Client with custom transport settings.
func WithClient(client Exchanger) Opt {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithTimeout returns an option to set the per-query timeout on the default
// client. It has no effect when combined with WithClient.
func WithTimeout(timeout time.Duration) Opt {
	return func(r *Resolver) {
		if c, ok := r.client.(*dns.Client); ok {
			c.Timeout = timeout
		}
	}
}

// New creates a DNS resolver that queries name with the given method
// against each of the servers in order.
func New(name string, servers []netip.Addr, method QueryMethod, opts ...Opt) *Resolver {
	r := &Resolver{
		name:    name,
		servers: servers,
		port:    DefaultPort,
		method:  method,
		client:  &dns.Client{Timeout: _defaultTimeout},
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// Resolve implements pubip.Resolver. Servers whose own address family
// cannot satisfy the requested version are skipped without I/O; if none
// remain the stream is immediately exhausted.
func (r *Resolver) Resolve(version pubip.Version) pubip.Stream {
	var queries pubip.Resolvers
	for _, server := range r.servers {
		if !version.Matches(server) {
			continue
		}
		queries = append(queries, &serverQuery{resolver: r, server: server})
	}
	return queries.Resolve(version)
}

// serverQuery is one attempt against one server.
type serverQuery struct {
	resolver *Resolver
	server   netip.Addr
}

func (q *serverQuery) Resolve(pubip.Version) pubip.Stream {
	return pubip.Single(q.run)
}

func (q *serverQuery) run(ctx context.Context) pubip.Resolution {
	r := q.resolver
	server := net.JoinHostPort(q.server.String(), strconv.Itoa(int(r.port)))

	// Fresh request each attempt: ExchangeContext mutates *dns.Msg
	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(r.name), r.method.qtype())
	req.SetEdns0(dns.DefaultMsgSize, false)

	resp, _, err := r.client.ExchangeContext(ctx, req, server)
	if err == nil {
		var addr netip.Addr
		if addr, err = extractAddr(resp, r.method); err == nil {
			return pubip.Resolution{
				Addr:    addr,
				Details: Details{Server: server, Name: r.name, Method: r.method},
			}
		}
	}
	return pubip.Resolution{
		Err: &pubip.StrategyError{Strategy: "dns", Endpoint: server, Err: err},
	}
}

// extractAddr pulls the caller's address out of a response according to the
// query method. Empty answers and unparsable TXT strings map to
// pubip.ErrNoAddress; an answer of an unexpected record type is a protocol
// error.
func extractAddr(resp *dns.Msg, method QueryMethod) (netip.Addr, error) {
	if resp == nil || len(resp.Answer) == 0 {
		return netip.Addr{}, pubip.ErrNoAddress
	}

	switch record := resp.Answer[0].(type) {
	case *dns.A:
		if method == A {
			return addrFromIP(record.A)
		}
	case *dns.AAAA:
		if method == AAAA {
			return addrFromIP(record.AAAA)
		}
	case *dns.TXT:
		if method != TXT {
			break
		}
		if len(record.Txt) == 0 {
			return netip.Addr{}, pubip.ErrNoAddress
		}
		addr, err := netip.ParseAddr(strings.Trim(record.Txt[0], `"`))
		if err != nil {
			return netip.Addr{}, fmt.Errorf("%w: %q", pubip.ErrNoAddress, record.Txt[0])
		}
		return addr, nil
	}

	return netip.Addr{}, fmt.Errorf("unexpected %s answer for %s query",
		dns.TypeToString[resp.Answer[0].Header().Rrtype], method)
}

func addrFromIP(ip net.IP) (netip.Addr, error) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, pubip.ErrNoAddress
	}
	return addr.Unmap(), nil
}
