package pubip

import "context"

// Resolver produces a lazy stream of resolution attempts for a requested
// Version. Implementations hold configuration only: Resolve performs no I/O
// itself and may be called repeatedly and concurrently, each call returning
// an independent Stream.
type Resolver interface {
	Resolve(version Version) Stream
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(version Version) Stream

// Resolve calls f.
func (f ResolverFunc) Resolve(version Version) Stream { return f(version) }

// Resolvers is an ordered collection of resolvers tried in priority order.
// Its stream drains each member fully before starting the next, so results
// keep strict priority order and a member that fails or produces nothing
// simply hands over to its successor. An empty collection resolves to an
// immediately exhausted stream.
type Resolvers []Resolver

var _ Resolver = Resolvers(nil)

// Resolve returns the concatenated fallback stream over every member.
func (rs Resolvers) Resolve(version Version) Stream {
	return &chainStream{version: version, pending: rs}
}

// chainStream drives one member stream at a time. The current stream is
// never restarted and never abandoned before exhaustion, which guarantees
// in-order, non-interleaved fallback. When the current stream ends, the
// next resolver is started within the same pull, so the caller never sees
// a spurious end-of-sequence while resolvers remain.
type chainStream struct {
	version Version
	current Stream
	pending []Resolver
}

func (c *chainStream) Next(ctx context.Context) (Resolution, bool) {
	for {
		if c.current != nil {
			if res, ok := c.current.Next(ctx); ok {
				return res, true
			}
			c.current = nil
		}
		if len(c.pending) == 0 {
			return Resolution{}, false
		}
		c.current = c.pending[0].Resolve(c.version)
		c.pending = c.pending[1:]
	}
}
