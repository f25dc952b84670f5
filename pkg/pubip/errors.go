package pubip

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAddress is returned when a response contained no address, or an
	// address string that could not be parsed.
	ErrNoAddress = errors.New("no or invalid IP address in response")
	// ErrVersionMismatch is returned when a resolver produced an address of
	// a family other than the one requested.
	ErrVersionMismatch = errors.New("IP version not requested was returned")
)

// StrategyError wraps a failure specific to one strategy's endpoint,
// keeping enough context to tell which attempt failed when a full stream is
// drained for audit.
type StrategyError struct {
	Strategy string // resolver kind, e.g. "dns" or "http"
	Endpoint string // server address or URL of the failed attempt
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s resolver %s: %v", e.Strategy, e.Endpoint, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StrategyError) Unwrap() error { return e.Err }
