//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"payout/internal/payout/models"
	"payout/internal/payout/store"
	"payout/pkg/domain"
	"payout/pkg/testutil"
	"payout/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresPayoutStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresPayoutStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "payouts"))
}

func (s *PostgresStoreSuite) enqueue(created time.Time) *models.Instruction {
	instr := models.NewInstruction(models.KindWithdrawal, testutil.Addr(5), domain.NewAmount(250), created)
	instr.ProjectID = 1
	instr.Period = 200
	s.Require().NoError(s.store.Enqueue(context.Background(), instr))
	return instr
}

func (s *PostgresStoreSuite) TestClaimOnce() {
	ctx := context.Background()
	instr := s.enqueue(time.Now())
	now := time.Now()

	claimed, ok, err := s.store.Claim(ctx, instr.ID, now, now.Add(-time.Minute))
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(models.StatusDispatching, claimed.Status)
	s.Equal(1, claimed.Attempts)

	_, ok, err = s.store.Claim(ctx, instr.ID, now, now.Add(-time.Minute))
	s.Require().NoError(err)
	s.False(ok, "a fresh claim blocks a second dispatcher")
}

func (s *PostgresStoreSuite) TestStaleClaimIsReclaimable() {
	ctx := context.Background()
	instr := s.enqueue(time.Now())
	past := time.Now().Add(-time.Hour)

	_, ok, err := s.store.Claim(ctx, instr.ID, past, past.Add(-time.Minute))
	s.Require().NoError(err)
	s.Require().True(ok)

	claimable, err := s.store.ListClaimable(ctx, time.Now().Add(-time.Minute), 10)
	s.Require().NoError(err)
	s.Require().Len(claimable, 1)
	s.Equal(instr.ID, claimable[0].ID)
}

func (s *PostgresStoreSuite) TestMarkSentAndRelease() {
	ctx := context.Background()
	sent := s.enqueue(time.Now().Add(-2 * time.Second))
	failed := s.enqueue(time.Now().Add(-time.Second))
	now := time.Now()

	for _, id := range []models.Instruction{*sent, *failed} {
		_, ok, err := s.store.Claim(ctx, id.ID, now, now.Add(-time.Minute))
		s.Require().NoError(err)
		s.Require().True(ok)
	}
	s.Require().NoError(s.store.MarkSent(ctx, sent.ID, now))
	s.Require().NoError(s.store.Release(ctx, failed.ID, "recipient rejected"))

	got, err := s.store.FindByID(ctx, sent.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSent, got.Status)
	s.NotNil(got.SentAt)

	got, err = s.store.FindByID(ctx, failed.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
	s.Equal("recipient rejected", got.LastError)

	recent, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(failed.ID, recent[0].ID, "newest first")
}
