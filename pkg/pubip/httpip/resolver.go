// Package httpip resolves the caller's public IP address by fetching it
// from HTTP origins that echo the client's address, such as api.ipify.org
// and icanhazip.com.
//
// The package is a strategy adapter for pkg/pubip: a Resolver holds a
// fixed, ordered list of endpoints, filters that list by the requested
// address family before any request is made, and falls back from endpoint
// to endpoint using the same combinator that drives the top-level strategy
// list.
package httpip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/lc/myip/pkg/pubip"
)

const _defaultTimeout = 5 * time.Second

// An address echo is a few dozen bytes; reading is capped so a
// misbehaving endpoint cannot balloon memory.
const _maxBody = 64 << 10

// ExtractMethod selects how the caller's address is extracted from a
// response body.
type ExtractMethod int

const (
	// PlainText parses the whole body, minus surrounding whitespace.
	PlainText ExtractMethod = iota
	// StripQuotes additionally removes surrounding double quotes.
	StripQuotes
	// JSONIPField decodes the body as JSON and parses its "ip" field.
	JSONIPField
)

// String returns a short name for the method.
func (m ExtractMethod) String() string {
	switch m {
	case StripQuotes:
		return "quoted"
	case JSONIPField:
		return "json"
	default:
		return "plain"
	}
}

// Endpoint is one HTTP origin that echoes the caller's address.
type Endpoint struct {
	URL     string
	Method  ExtractMethod
	Version pubip.Version // family of address the origin reports
}

// matches reports whether the endpoint can satisfy a request for version.
func (e Endpoint) matches(version pubip.Version) bool {
	return e.Version == pubip.Any || version == pubip.Any || e.Version == version
}

// Details is the evidence attached to a successful HTTP resolution.
type Details struct {
	URL    string
	Method ExtractMethod
}

// Strategy implements pubip.Details.
func (Details) Strategy() string { return "http" }

// Resolver fetches the caller's address from a fixed, ordered list of HTTP
// origins. Each endpoint is a single attempt; endpoints whose declared
// family cannot satisfy the requested version are skipped without I/O.
//
// The HTTP client belongs to the Resolver rather than to the process:
// callers that need pooling, TLS layering or custom transports inject their
// own with WithClient. A Resolver holds configuration only and is safe to
// share across concurrent resolution attempts.
type Resolver struct {
	endpoints []Endpoint
	client    *http.Client
}

var _ pubip.Resolver = (*Resolver)(nil)

// Opt is a function option for configuring the Resolver.
type Opt func(r *Resolver)

// WithClient returns an option to substitute the HTTP client.
func WithClient(client *http.Client) Opt {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithTimeout returns an option to set the per-request timeout on the
// resolver's client.
func WithTimeout(timeout time.Duration) Opt {
	return func(r *Resolver) {
		r.client.Timeout = timeout
	}
}

// New creates an HTTP resolver that tries each of the endpoints in order.
func New(endpoints []Endpoint, opts ...Opt) *Resolver {
	r := &Resolver{
		endpoints: endpoints,
		client:    &http.Client{Timeout: _defaultTimeout},
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// Resolve implements pubip.Resolver.
func (r *Resolver) Resolve(version pubip.Version) pubip.Stream {
	var fetches pubip.Resolvers
	for _, endpoint := range r.endpoints {
		if !endpoint.matches(version) {
			continue
		}
		fetches = append(fetches, &endpointFetch{client: r.client, endpoint: endpoint})
	}
	return fetches.Resolve(version)
}

// endpointFetch is one attempt against one origin.
type endpointFetch struct {
	client   *http.Client
	endpoint Endpoint
}

func (f *endpointFetch) Resolve(pubip.Version) pubip.Stream {
	return pubip.Single(f.run)
}

func (f *endpointFetch) run(ctx context.Context) pubip.Resolution {
	addr, err := f.fetch(ctx)
	if err != nil {
		return pubip.Resolution{
			Err: &pubip.StrategyError{Strategy: "http", Endpoint: f.endpoint.URL, Err: err},
		}
	}
	return pubip.Resolution{
		Addr:    addr,
		Details: Details{URL: f.endpoint.URL, Method: f.endpoint.Method},
	}
}

func (f *endpointFetch) fetch(ctx context.Context) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint.URL, nil)
	if err != nil {
		return netip.Addr{}, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return netip.Addr{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, _maxBody))
	if err != nil {
		return netip.Addr{}, err
	}

	return extractAddr(body, f.endpoint.Method)
}

// extractAddr parses the caller's address out of a response body. Empty or
// unparsable address strings map to pubip.ErrNoAddress.
func extractAddr(body []byte, method ExtractMethod) (netip.Addr, error) {
	var raw string
	switch method {
	case JSONIPField:
		var payload struct {
			IP string `json:"ip"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return netip.Addr{}, fmt.Errorf("%w: %v", pubip.ErrNoAddress, err)
		}
		raw = payload.IP
	case StripQuotes:
		raw = strings.Trim(strings.TrimSpace(string(body)), `"`)
	default:
		raw = strings.TrimSpace(string(body))
	}

	if raw == "" {
		return netip.Addr{}, pubip.ErrNoAddress
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q", pubip.ErrNoAddress, raw)
	}
	return addr, nil
}
