package httpip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"

	"github.com/lc/myip/pkg/pubip"
)

type ResolverTestSuite struct {
	suite.Suite
}

func (s *ResolverTestSuite) drain(r *Resolver, version pubip.Version) []pubip.Resolution {
	return pubip.Drain(context.Background(), r.Resolve(version))
}

func (s *ResolverTestSuite) serve(body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *ResolverTestSuite) TestExtractMethods() {
	testCases := []struct {
		name   string
		body   string
		method ExtractMethod
		want   string
	}{
		{"plain text", "203.0.113.7", PlainText, "203.0.113.7"},
		{"plain text with newline", "203.0.113.7\n", PlainText, "203.0.113.7"},
		{"plain text ipv6", "2001:db8::7\n", PlainText, "2001:db8::7"},
		{"quoted", `"203.0.113.7"`, StripQuotes, "203.0.113.7"},
		{"json ip field", `{"ip":"203.0.113.7"}`, JSONIPField, "203.0.113.7"},
		{"json with extras", `{"ip": "203.0.113.7", "country": "NL"}`, JSONIPField, "203.0.113.7"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			srv := s.serve(tc.body)
			resolver := New([]Endpoint{
				{URL: srv.URL, Method: tc.method, Version: pubip.Any},
			})

			all := s.drain(resolver, pubip.Any)
			s.Require().Len(all, 1)
			s.Require().NoError(all[0].Err)
			s.Equal(netip.MustParseAddr(tc.want), all[0].Addr)

			details, ok := all[0].Details.(Details)
			s.Require().True(ok)
			s.Equal("http", details.Strategy())
			s.Equal(srv.URL, details.URL)
			s.Equal(tc.method, details.Method)
		})
	}
}

func (s *ResolverTestSuite) TestExtractFailures() {
	testCases := []struct {
		name   string
		body   string
		method ExtractMethod
	}{
		{"empty body", "", PlainText},
		{"not an address", "service temporarily unavailable", PlainText},
		{"json without ip field", `{"address":"203.0.113.7"}`, JSONIPField},
		{"invalid json", `{"ip":`, JSONIPField},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			srv := s.serve(tc.body)
			resolver := New([]Endpoint{
				{URL: srv.URL, Method: tc.method, Version: pubip.Any},
			})

			all := s.drain(resolver, pubip.Any)
			s.Require().Len(all, 1)
			s.ErrorIs(all[0].Err, pubip.ErrNoAddress)

			var strategyErr *pubip.StrategyError
			s.Require().ErrorAs(all[0].Err, &strategyErr)
			s.Equal("http", strategyErr.Strategy)
			s.Equal(srv.URL, strategyErr.Endpoint)
		})
	}
}

// A failing origin surfaces one error item and hands over to the next
// endpoint.
func (s *ResolverTestSuite) TestEndpointFallback() {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	s.T().Cleanup(broken.Close)
	healthy := s.serve("203.0.113.7")

	resolver := New([]Endpoint{
		{URL: broken.URL, Method: PlainText, Version: pubip.Any},
		{URL: healthy.URL, Method: PlainText, Version: pubip.Any},
	})

	all := s.drain(resolver, pubip.Any)
	s.Require().Len(all, 2)

	var strategyErr *pubip.StrategyError
	s.Require().ErrorAs(all[0].Err, &strategyErr)
	s.Equal(broken.URL, strategyErr.Endpoint)

	s.Require().True(all[1].OK())
	s.Equal(netip.MustParseAddr("203.0.113.7"), all[1].Addr)

	addr, found := pubip.Address(context.Background(), resolver, pubip.Any)
	s.True(found)
	s.Equal(netip.MustParseAddr("203.0.113.7"), addr)
}

// Endpoints of the wrong family are skipped without a request.
func (s *ResolverTestSuite) TestVersionFiltersEndpoints() {
	var v6Hits atomic.Int64
	v6Srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		v6Hits.Inc()
		_, _ = w.Write([]byte("2001:db8::7"))
	}))
	s.T().Cleanup(v6Srv.Close)
	v4Srv := s.serve("203.0.113.7")

	resolver := New([]Endpoint{
		{URL: v6Srv.URL, Method: PlainText, Version: pubip.V6},
		{URL: v4Srv.URL, Method: PlainText, Version: pubip.V4},
	})

	all := s.drain(resolver, pubip.V4)
	s.Require().Len(all, 1)
	s.True(all[0].OK())
	s.Equal(netip.MustParseAddr("203.0.113.7"), all[0].Addr)
	s.Equal(int64(0), v6Hits.Load())
}

// A dual-stack endpoint serves family-specific requests; if it answers with
// the wrong family anyway, the pipeline records a version mismatch.
func (s *ResolverTestSuite) TestDualStackEndpointMismatch() {
	srv := s.serve("2001:db8::7")
	resolver := New([]Endpoint{
		{URL: srv.URL, Method: PlainText, Version: pubip.Any},
	})

	all := pubip.Drain(context.Background(), pubip.Resolve(resolver, pubip.V4))
	s.Require().Len(all, 1)
	s.ErrorIs(all[0].Err, pubip.ErrVersionMismatch)

	_, found := pubip.Address(context.Background(), resolver, pubip.V4)
	s.False(found)
}

func (s *ResolverTestSuite) TestNoMatchingEndpoints() {
	srv := s.serve("203.0.113.7")
	resolver := New([]Endpoint{
		{URL: srv.URL, Method: PlainText, Version: pubip.V4},
	})

	all := s.drain(resolver, pubip.V6)
	s.Empty(all)
}

func (s *ResolverTestSuite) TestContextCancellation() {
	srv := s.serve("203.0.113.7")
	resolver := New([]Endpoint{
		{URL: srv.URL, Method: PlainText, Version: pubip.Any},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	all := pubip.Drain(ctx, resolver.Resolve(pubip.Any))
	s.Require().Len(all, 1)
	s.ErrorIs(all[0].Err, context.Canceled)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}
