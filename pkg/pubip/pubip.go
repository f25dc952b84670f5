package pubip

import (
	"context"
	"fmt"
	"net/netip"

	"go.uber.org/multierr"
)

// Resolve returns the full, order-preserving stream of attempts for the
// requested version. Every successful item is re-checked against version:
// an address of the wrong family is converted in place to an
// ErrVersionMismatch failure rather than dropped, so consumers draining the
// stream for audit still see the attempt. Errors from strategies pass
// through unchanged.
func Resolve(resolver Resolver, version Version) Stream {
	return &versionStream{version: version, inner: resolver.Resolve(version)}
}

type versionStream struct {
	version Version
	inner   Stream
}

func (s *versionStream) Next(ctx context.Context) (Resolution, bool) {
	res, ok := s.inner.Next(ctx)
	if !ok {
		return Resolution{}, false
	}
	if res.Err == nil && !s.version.Matches(res.Addr) {
		res = Resolution{
			Details: res.Details,
			Err:     fmt.Errorf("%w: got %s for an %s request", ErrVersionMismatch, res.Addr, s.version),
		}
	}
	return res, true
}

// Address attempts to produce an address of the requested version, best
// effort: every error along the way is discarded, a failed resolver is
// never retried, and ok is false once every strategy is exhausted without a
// success.
func Address(ctx context.Context, resolver Resolver, version Version) (netip.Addr, bool) {
	res, ok := FirstResolution(ctx, resolver, version)
	return res.Addr, ok
}

// FirstResolution is Address with the winning strategy's Details retained.
func FirstResolution(ctx context.Context, resolver Resolver, version Version) (Resolution, bool) {
	stream := Resolve(resolver, version)
	for {
		res, ok := stream.Next(ctx)
		if !ok {
			return Resolution{}, false
		}
		if res.OK() {
			return res, true
		}
	}
}

// Drain runs a stream to exhaustion and collects everything it produced,
// successes and failures alike.
func Drain(ctx context.Context, stream Stream) []Resolution {
	var all []Resolution
	for {
		res, ok := stream.Next(ctx)
		if !ok {
			return all
		}
		all = append(all, res)
	}
}

// Errors aggregates every failure in a set of drained resolutions into a
// single error, or nil if none failed.
func Errors(resolutions []Resolution) error {
	var errs error
	for _, res := range resolutions {
		errs = multierr.Append(errs, res.Err)
	}
	return errs
}
