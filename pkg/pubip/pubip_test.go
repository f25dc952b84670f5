package pubip_test

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/multierr"

	"github.com/lc/myip/pkg/pubip"
)

type PipelineTestSuite struct {
	suite.Suite
}

// Spec scenario: a failing strategy followed by a succeeding one. The best
// effort answer is the success; the full stream keeps the failure.
func (s *PipelineTestSuite) TestErrorThenSuccess() {
	failure := &pubip.StrategyError{
		Strategy: "dns",
		Endpoint: "192.0.2.53:53",
		Err:      errors.New("i/o timeout"),
	}
	r0 := &scripted{items: []pubip.Resolution{errRes(failure)}}
	r1 := &scripted{items: []pubip.Resolution{okRes("203.0.113.5")}}
	resolvers := pubip.Resolvers{r0, r1}

	addr, found := pubip.Address(context.Background(), resolvers, pubip.Any)
	s.True(found)
	s.Equal(netip.MustParseAddr("203.0.113.5"), addr)

	all := pubip.Drain(context.Background(), pubip.Resolve(resolvers, pubip.Any))
	s.Require().Len(all, 2)

	var strategyErr *pubip.StrategyError
	s.Require().ErrorAs(all[0].Err, &strategyErr)
	s.Equal("dns", strategyErr.Strategy)

	s.True(all[1].OK())
	s.Equal(netip.MustParseAddr("203.0.113.5"), all[1].Addr)
}

// Spec scenario: a strategy that answers with the wrong family. The item is
// converted to a version mismatch error, not silently dropped.
func (s *PipelineTestSuite) TestVersionMismatchRecorded() {
	r0 := &scripted{items: []pubip.Resolution{okRes("2001:db8::1")}}

	all := pubip.Drain(context.Background(), pubip.Resolve(pubip.Resolvers{r0}, pubip.V4))
	s.Require().Len(all, 1)
	s.ErrorIs(all[0].Err, pubip.ErrVersionMismatch)
	s.False(all[0].Addr.IsValid())
	// The strategy's evidence survives for auditing.
	s.Equal("test", all[0].Details.Strategy())

	_, found := pubip.Address(context.Background(), pubip.Resolvers{r0}, pubip.V4)
	s.False(found)
}

// Best effort skips past a mismatched item and keeps pulling.
func (s *PipelineTestSuite) TestAddressSkipsMismatch() {
	r0 := &scripted{items: []pubip.Resolution{okRes("2001:db8::1")}}
	r1 := &scripted{items: []pubip.Resolution{okRes("203.0.113.5")}}

	addr, found := pubip.Address(context.Background(), pubip.Resolvers{r0, r1}, pubip.V4)
	s.True(found)
	s.Equal(netip.MustParseAddr("203.0.113.5"), addr)
}

func (s *PipelineTestSuite) TestStrategyErrorsPassThroughUnchanged() {
	cause := errors.New("connection refused")
	r0 := &scripted{items: []pubip.Resolution{errRes(cause)}}

	all := pubip.Drain(context.Background(), pubip.Resolve(pubip.Resolvers{r0}, pubip.Any))
	s.Require().Len(all, 1)
	s.Same(cause, all[0].Err)
}

func (s *PipelineTestSuite) TestMatchingAddressesPassValidation() {
	r0 := &scripted{items: []pubip.Resolution{okRes("2001:db8::1")}}

	all := pubip.Drain(context.Background(), pubip.Resolve(pubip.Resolvers{r0}, pubip.V6))
	s.Require().Len(all, 1)
	s.True(all[0].OK())
	s.Equal(netip.MustParseAddr("2001:db8::1"), all[0].Addr)
}

func (s *PipelineTestSuite) TestFirstResolutionKeepsDetails() {
	r0 := &scripted{items: []pubip.Resolution{errRes(errors.New("nope"))}}
	r1 := &scripted{items: []pubip.Resolution{okRes("198.51.100.4")}}

	res, found := pubip.FirstResolution(context.Background(), pubip.Resolvers{r0, r1}, pubip.Any)
	s.Require().True(found)
	s.Equal(netip.MustParseAddr("198.51.100.4"), res.Addr)
	s.Require().NotNil(res.Details)
	s.Equal("test", res.Details.Strategy())
}

func (s *PipelineTestSuite) TestErrorsAggregation() {
	errA := errors.New("first failure")
	errB := errors.New("second failure")
	resolutions := []pubip.Resolution{
		errRes(errA),
		okRes("192.0.2.1"),
		errRes(errB),
	}

	err := pubip.Errors(resolutions)
	s.Require().Error(err)
	s.Len(multierr.Errors(err), 2)
	s.ErrorIs(err, errA)
	s.ErrorIs(err, errB)

	s.NoError(pubip.Errors([]pubip.Resolution{okRes("192.0.2.1")}))
	s.NoError(pubip.Errors(nil))
}

func (s *PipelineTestSuite) TestStats() {
	r0 := &scripted{items: []pubip.Resolution{
		errRes(errors.New("down")),
		okRes("192.0.2.1"),
	}}

	var stats pubip.Stats
	counted := pubip.WithStats(pubip.Resolvers{r0}, &stats)

	all := pubip.Drain(context.Background(), pubip.Resolve(counted, pubip.Any))
	s.Len(all, 2)
	s.Equal(int64(2), stats.Attempts.Load())
	s.Equal(int64(1), stats.Successes.Load())
	s.Equal(int64(1), stats.Failures.Load())
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
