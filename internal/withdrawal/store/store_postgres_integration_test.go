//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"payout/internal/ledger"
	"payout/internal/withdrawal/models"
	"payout/internal/withdrawal/store"
	"payout/pkg/domain"
	"payout/pkg/platform/sentinel"
	"payout/pkg/testutil"
	"payout/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresWithdrawalStore
	runner   *ledger.PostgresRunner
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgresWithdrawalStore(s.postgres.DB)
	s.runner = ledger.NewPostgresRunner(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "withdrawal_confirmations", "withdrawal_requests", "withdrawal_history")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestRequestRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	req := models.NewRequest(1, 200, now)
	req.Confirmations = models.Confirmations{
		Value:     domain.MustParseAmount("1000000000000000000000"),
		Count:     2,
		Providers: []domain.Address{testutil.Addr(12), testutil.Addr(11)},
	}

	s.Require().NoError(s.store.SaveRequest(ctx, req))

	got, err := s.store.FindRequest(ctx, 1)
	s.Require().NoError(err)
	s.Equal(domain.Period(200), got.RequestedPeriod)
	s.Equal("1000000000000000000000", got.Confirmations.Value.String())
	s.Equal(uint32(2), got.Confirmations.Count)
	s.Equal([]domain.Address{testutil.Addr(12), testutil.Addr(11)}, got.Confirmations.Providers, "submission order is kept")
}

func (s *PostgresStoreSuite) TestSaveRequest_ReplacesProviders() {
	ctx := context.Background()
	req := models.NewRequest(1, 200, time.Now())
	req.Confirmations.Providers = []domain.Address{testutil.Addr(11), testutil.Addr(12)}
	req.Confirmations.Count = 2
	s.Require().NoError(s.store.SaveRequest(ctx, req))

	req.Confirmations.Reset()
	s.Require().NoError(s.store.SaveRequest(ctx, req))

	got, err := s.store.FindRequest(ctx, 1)
	s.Require().NoError(err)
	s.Empty(got.Confirmations.Providers)
	s.Zero(got.Confirmations.Count)
}

func (s *PostgresStoreSuite) TestDeleteRequest() {
	ctx := context.Background()
	req := models.NewRequest(3, 10, time.Now())
	req.Confirmations.Providers = []domain.Address{testutil.Addr(11)}
	s.Require().NoError(s.store.SaveRequest(ctx, req))

	s.Require().NoError(s.store.DeleteRequest(ctx, 3))
	s.Require().NoError(s.store.DeleteRequest(ctx, 3), "deleting twice is a no-op")

	_, err := s.store.FindRequest(ctx, 3)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestListRequests_OrderedByProject() {
	ctx := context.Background()
	for _, id := range []domain.ProjectID{5, 2, 9} {
		s.Require().NoError(s.store.SaveRequest(ctx, models.NewRequest(id, 1, time.Now())))
	}

	got, err := s.store.ListRequests(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(domain.ProjectID(2), got[0].ProjectID)
	s.Equal(domain.ProjectID(9), got[2].ProjectID)
}

func (s *PostgresStoreSuite) TestHistory() {
	ctx := context.Background()

	empty, err := s.store.LoadHistory(ctx, 7)
	s.Require().NoError(err)
	s.False(empty.Completed())
	s.Equal(domain.ProjectID(7), empty.ProjectID)

	empty.Record(210, 4, domain.NewAmount(500), time.Now())
	s.Require().NoError(s.store.SaveHistory(ctx, empty))

	got, err := s.store.LoadHistory(ctx, 7)
	s.Require().NoError(err)
	s.True(got.Completed())
	s.Equal(domain.Period(210), got.LastCompletionPeriod)
	s.Equal(uint64(4), got.DepositsAtCompletion)
	s.Equal("500", got.LastAmount.String())
}

func (s *PostgresStoreSuite) TestRollbackDiscardsWrites() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.SaveRequest(ctx, models.NewRequest(4, 1, time.Now())); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindRequest(ctx, 4)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
