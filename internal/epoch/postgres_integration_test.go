//go:build integration

package epoch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"payout/internal/epoch"
	"payout/internal/ledger"
	"payout/pkg/domain"
	"payout/pkg/platform/audit/publishers/compliance"
	auditpg "payout/pkg/platform/audit/store/postgres"
	"payout/pkg/testutil"
	"payout/pkg/testutil/containers"
)

type fixedOracleAddress domain.Address

func (a fixedOracleAddress) OracleAddress(context.Context) (domain.Address, error) {
	return domain.Address(a), nil
}

type PostgresOracleSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	runner   *ledger.PostgresRunner
	audit    *auditpg.Store
}

func TestPostgresOracleSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresOracleSuite))
}

func (s *PostgresOracleSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.runner = ledger.NewPostgresRunner(s.postgres.DB)
	s.audit = auditpg.New(s.postgres.DB)
}

func (s *PostgresOracleSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "ledger_counters", "audit_events", "outbox"))
}

// boot builds the oracle the way the server does on every start.
func (s *PostgresOracleSuite) boot(start domain.Period) *epoch.PostgresOracle {
	o := epoch.NewPostgresOracle(s.postgres.DB)
	s.Require().NoError(o.Seed(context.Background(), start))
	return o
}

func (s *PostgresOracleSuite) current(o *epoch.PostgresOracle) domain.Period {
	p, err := o.CurrentPeriod(context.Background())
	s.Require().NoError(err)
	return p
}

func (s *PostgresOracleSuite) TestUnseededReadsZero() {
	s.Equal(domain.Period(0), s.current(epoch.NewPostgresOracle(s.postgres.DB)))
}

func (s *PostgresOracleSuite) TestAdvance() {
	ctx := context.Background()
	o := s.boot(100)

	s.Require().NoError(o.Advance(ctx, 200))
	s.Require().NoError(o.Advance(ctx, 200), "same period is accepted")
	s.ErrorIs(o.Advance(ctx, 199), epoch.ErrPeriodRegressed)
	s.Equal(domain.Period(200), s.current(o))
}

func (s *PostgresOracleSuite) TestSeedNeverLowersStoredPeriod() {
	s.Require().NoError(s.boot(100).Advance(context.Background(), 500))

	s.Equal(domain.Period(500), s.current(s.boot(0)))
	s.Equal(domain.Period(600), s.current(s.boot(600)))
}

func (s *PostgresOracleSuite) TestReportedPeriodSurvivesRestart() {
	ctx := context.Background()
	oracleAddr := testutil.Addr(42)
	newReporter := func(o *epoch.PostgresOracle) *epoch.Reporter {
		r, err := epoch.NewReporter(o, fixedOracleAddress(oracleAddr), s.runner,
			epoch.WithAuditPublisher(compliance.New(s.audit)),
		)
		s.Require().NoError(err)
		return r
	}

	s.Require().NoError(newReporter(s.boot(0)).Report(ctx, oracleAddr, 500))

	restarted := s.boot(0)
	s.Equal(domain.Period(500), s.current(restarted))
	s.ErrorIs(newReporter(restarted).Report(ctx, oracleAddr, 200), epoch.ErrPeriodRegressed)
	s.Equal(domain.Period(500), s.current(restarted))
}

func (s *PostgresOracleSuite) TestAdvanceRollsBackWithUnit() {
	ctx := context.Background()
	o := s.boot(100)
	errAbort := errors.New("abort")

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := o.Advance(ctx, 300); err != nil {
			return err
		}
		inUnit, err := o.CurrentPeriod(ctx)
		s.Require().NoError(err)
		s.Equal(domain.Period(300), inUnit)
		return errAbort
	})

	s.ErrorIs(err, errAbort)
	s.Equal(domain.Period(100), s.current(o))
}
