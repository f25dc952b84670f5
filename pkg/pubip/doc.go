// Package pubip discovers the caller's public-facing IP address by driving
// a prioritized list of independent lookup strategies until one succeeds.
//
// The package is the composition engine only: it knows nothing about DNS or
// HTTP. Concrete strategies live in the dnsip and httpip subpackages and
// plug in through the Resolver interface.
//
// # Resolvers and streams
//
// A Resolver turns a requested Version into a Stream, a lazy pull-based
// sequence of resolution attempts. No network I/O happens until the stream
// is pulled, and each pull performs at most one attempt. Both a single
// strategy and an ordered collection of strategies (Resolvers) satisfy the
// same interface, so callers never distinguish "one strategy" from "many".
//
// A Resolvers collection falls back in priority order: the stream of member
// i is drained to exhaustion before member i+1 is started, results are
// never interleaved, and a member that only produces errors simply hands
// over to its successor. The same combinator is reused inside the adapters
// for their own server and endpoint lists.
//
// # Basic usage
//
// Compose the builtin strategies and ask for the first address:
//
//	resolver := pubip.Resolvers{dnsip.All(), httpip.All()}
//	addr, ok := pubip.Address(ctx, resolver, pubip.Any)
//	if !ok {
//		log.Fatal("couldn't discover a public IP address")
//	}
//	fmt.Println(addr)
//
// FirstResolution additionally reports how the address was obtained:
//
//	res, ok := pubip.FirstResolution(ctx, resolver, pubip.V4)
//	if ok {
//		if d, isDNS := res.Details.(dnsip.Details); isDNS {
//			fmt.Printf("%s via %s\n", res.Addr, d.Server)
//		}
//	}
//
// # Errors
//
// Errors are values: they travel through the same stream as successes and
// are only discarded by the best-effort entry points. Resolve returns the
// full stream with every successful item re-validated against the requested
// Version; an address of the wrong family becomes an ErrVersionMismatch
// item instead of being silently dropped. Drain and Errors collect a whole
// stream for auditing:
//
//	all := pubip.Drain(ctx, pubip.Resolve(resolver, pubip.V6))
//	if err := pubip.Errors(all); err != nil {
//		log.Printf("attempts failed: %v", err)
//	}
//
// Exhausting every strategy without a success is not an error; Address
// reports it as ok=false.
//
// # Concurrency
//
// Resolver values hold configuration only and may be shared freely across
// concurrent resolution attempts; every Resolve call returns an independent
// cursor. Strategies are never raced against each other: a resolution
// attempt is one logical flow of control, and cancelling its context
// cancels the network call of whichever attempt is in flight.
package pubip
