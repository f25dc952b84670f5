package pubip

import (
	"context"
	"net/netip"
)

// Details carries strategy-specific evidence describing how an address was
// obtained. The engine never interprets it; callers check Strategy and then
// recover the concrete type with a type assertion, e.g. dnsip.Details or
// httpip.Details.
type Details interface {
	// Strategy names the kind of resolver that produced the result,
	// e.g. "dns" or "http".
	Strategy() string
}

// Resolution is the outcome of a single lookup attempt: an address together
// with the Details of how it was obtained, or an error. A Resolution is
// never mutated after creation.
type Resolution struct {
	Addr    netip.Addr
	Details Details
	Err     error
}

// OK reports whether the attempt produced an address.
func (r Resolution) OK() bool { return r.Err == nil }

// Stream is a lazy sequence of resolution attempts. Next performs the work
// of the current attempt, including any network I/O, and returns its
// outcome; ok is false once the sequence is exhausted. Exhaustion is final:
// after Next returns false it must keep returning false.
//
// A Stream is a single-use cursor and is not safe for concurrent use.
// Resolvers hand out a fresh Stream on every Resolve call.
type Stream interface {
	Next(ctx context.Context) (res Resolution, ok bool)
}

// StreamOf returns a Stream that yields the given resolutions in order.
func StreamOf(resolutions ...Resolution) Stream {
	return &sliceStream{pending: resolutions}
}

type sliceStream struct {
	pending []Resolution
}

func (s *sliceStream) Next(context.Context) (Resolution, bool) {
	if len(s.pending) == 0 {
		return Resolution{}, false
	}
	res := s.pending[0]
	s.pending = s.pending[1:]
	return res, true
}

// Single returns a Stream whose only item is produced by fn on the first
// call to Next. Strategy adapters use it to defer network I/O until the
// attempt is actually pulled.
func Single(fn func(ctx context.Context) Resolution) Stream {
	return &singleStream{fn: fn}
}

type singleStream struct {
	fn func(ctx context.Context) Resolution
}

func (s *singleStream) Next(ctx context.Context) (Resolution, bool) {
	if s.fn == nil {
		return Resolution{}, false
	}
	fn := s.fn
	s.fn = nil
	return fn(ctx), true
}
