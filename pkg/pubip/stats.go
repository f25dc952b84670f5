package pubip

import (
	"context"

	"go.uber.org/atomic"
)

// Stats counts the attempts driven through a resolver wrapped with
// WithStats. Resolver values are shared by concurrent resolution attempts,
// so the counters are atomic.
type Stats struct {
	Attempts  atomic.Int64
	Successes atomic.Int64
	Failures  atomic.Int64
}

// WithStats returns a resolver that records every attempt driven through
// resolver into stats.
func WithStats(resolver Resolver, stats *Stats) Resolver {
	return ResolverFunc(func(version Version) Stream {
		return &statsStream{inner: resolver.Resolve(version), stats: stats}
	})
}

type statsStream struct {
	inner Stream
	stats *Stats
}

func (s *statsStream) Next(ctx context.Context) (Resolution, bool) {
	res, ok := s.inner.Next(ctx)
	if !ok {
		return res, false
	}
	s.stats.Attempts.Inc()
	if res.OK() {
		s.stats.Successes.Inc()
	} else {
		s.stats.Failures.Inc()
	}
	return res, true
}
