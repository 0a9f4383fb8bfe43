package epoch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"payout/internal/epoch/mocks"
	"payout/internal/ledger"
	"payout/pkg/domain"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/audit/publishers/compliance"
	auditmemory "payout/pkg/platform/audit/store/memory"
	"payout/pkg/testutil"
)

// Justification for unit tests: only the configured oracle may move the
// period, reports never move it backwards, and an audit failure must leave
// the counter where it was.

type staticSource struct {
	addr domain.Address
	err  error
}

func (s staticSource) OracleAddress(context.Context) (domain.Address, error) {
	return s.addr, s.err
}

type ReporterSuite struct {
	suite.Suite
	ctx     context.Context
	oracle  domain.Address
	counter *Counter
	events  *auditmemory.InMemoryStore
	denials *auditmemory.InMemoryStore
	runner  *ledger.MemoryRunner
}

func TestReporterSuite(t *testing.T) {
	suite.Run(t, new(ReporterSuite))
}

func (s *ReporterSuite) SetupTest() {
	s.ctx = context.Background()
	s.oracle = testutil.Addr(42)
	s.counter = NewCounter(100)
	s.events = auditmemory.NewInMemoryStore()
	s.denials = auditmemory.NewInMemoryStore()
	s.runner = ledger.NewMemoryRunner(s.events, s.counter)
}

func (s *ReporterSuite) reporter(source OracleAddressSource) *Reporter {
	r, err := NewReporter(s.counter, source, s.runner,
		WithAuditPublisher(compliance.New(s.events)),
		WithSecurityPublisher(compliance.New(s.denials)),
	)
	s.Require().NoError(err)
	return r
}

func (s *ReporterSuite) current() domain.Period {
	p, err := s.counter.CurrentPeriod(s.ctx)
	s.Require().NoError(err)
	return p
}

func (s *ReporterSuite) TestReport() {
	r := s.reporter(staticSource{addr: s.oracle})

	s.Run("oracle advances the period", func() {
		s.Require().NoError(r.Report(s.ctx, s.oracle, 150))
		s.EqualValues(150, s.current())

		events, err := s.events.ListBySubject(s.ctx, "epoch")
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal("100", events[0].Attributes["previous"])
		s.Equal("150", events[0].Attributes["period"])
	})

	s.Run("repeating the current period is a silent no-op", func() {
		s.Require().NoError(r.Report(s.ctx, s.oracle, 150))
		events, err := s.events.ListBySubject(s.ctx, "epoch")
		s.Require().NoError(err)
		s.Len(events, 1)
	})

	s.Run("decreasing period is rejected", func() {
		s.ErrorIs(r.Report(s.ctx, s.oracle, 149), ErrPeriodRegressed)
		s.EqualValues(150, s.current())
	})

	s.Run("other callers are refused", func() {
		s.ErrorIs(r.Report(s.ctx, testutil.Addr(1), 200), ErrNotOracle)
		s.EqualValues(150, s.current())

		denials, err := s.denials.ListBySubject(s.ctx, "epoch")
		s.Require().NoError(err)
		s.Require().Len(denials, 1)
		s.Equal(string(audit.EventAccessDenied), denials[0].Action)
	})
}

func (s *ReporterSuite) TestReport_NoOracleConfigured() {
	r := s.reporter(staticSource{})
	s.ErrorIs(r.Report(s.ctx, domain.ZeroAddress, 200), ErrNotOracle)
}

// commitFailingRunner runs the unit through the ledger runner and then fails
// it, as a commit error would.
type commitFailingRunner struct {
	runner *ledger.MemoryRunner
}

var errCommit = errors.New("commit failed")

func (r commitFailingRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return errCommit
	})
}

func (s *ReporterSuite) TestReport_CounterAdvancesInsideUnit() {
	r, err := NewReporter(s.counter, staticSource{addr: s.oracle}, commitFailingRunner{s.runner},
		WithAuditPublisher(compliance.New(s.events)),
	)
	s.Require().NoError(err)

	s.ErrorIs(r.Report(s.ctx, s.oracle, 150), errCommit)
	s.Equal(domain.Period(100), s.current(), "counter rolled back with the unit")

	events, err := s.events.ListBySubject(s.ctx, "epoch")
	s.Require().NoError(err)
	s.Empty(events, "audit event rolled back with the unit")
}

func (s *ReporterSuite) TestReport_ExternalCounterWaitsForCommit() {
	ctrl := gomock.NewController(s.T())
	counter := mocks.NewMockAdvancer(ctrl)
	counter.EXPECT().CurrentPeriod(gomock.Any()).Return(domain.Period(10), nil)

	r, err := NewReporter(counter, staticSource{addr: s.oracle}, commitFailingRunner{s.runner},
		WithAuditPublisher(compliance.New(s.events)),
	)
	s.Require().NoError(err)

	s.ErrorIs(r.Report(s.ctx, s.oracle, 11), errCommit)

	events, err := s.events.ListBySubject(s.ctx, "epoch")
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *ReporterSuite) TestReport_ExternalCounterAdvancesAfterCommit() {
	ctrl := gomock.NewController(s.T())
	counter := mocks.NewMockAdvancer(ctrl)
	counter.EXPECT().CurrentPeriod(gomock.Any()).Return(domain.Period(10), nil)
	counter.EXPECT().Advance(gomock.Any(), domain.Period(11)).Return(nil)

	r, err := NewReporter(counter, staticSource{addr: s.oracle}, s.runner,
		WithAuditPublisher(compliance.New(s.events)),
	)
	s.Require().NoError(err)

	s.Require().NoError(r.Report(s.ctx, s.oracle, 11))
	events, err := s.events.ListBySubject(s.ctx, "epoch")
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *ReporterSuite) TestReport_ExternalCounterLateRegression() {
	ctrl := gomock.NewController(s.T())
	counter := mocks.NewMockAdvancer(ctrl)
	counter.EXPECT().CurrentPeriod(gomock.Any()).Return(domain.Period(10), nil)
	counter.EXPECT().Advance(gomock.Any(), domain.Period(11)).Return(ErrPeriodRegressed)

	r, err := NewReporter(counter, staticSource{addr: s.oracle}, s.runner,
		WithAuditPublisher(compliance.New(s.events)),
	)
	s.Require().NoError(err)

	s.ErrorIs(r.Report(s.ctx, s.oracle, 11), ErrPeriodRegressed)
}
