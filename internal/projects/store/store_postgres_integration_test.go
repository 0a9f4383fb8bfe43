//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"payout/internal/ledger"
	"payout/internal/projects/models"
	"payout/internal/projects/store"
	"payout/pkg/domain"
	"payout/pkg/platform/sentinel"
	"payout/pkg/testutil"
	"payout/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresProjectStore
	runner   *ledger.PostgresRunner
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresProjectStore(s.postgres.DB)
	s.runner = ledger.NewPostgresRunner(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "project_contracts", "projects", "ledger_counters")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) add(ctx context.Context, contracts ...domain.Address) (*models.Project, error) {
	id, err := s.store.NextID(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &models.Project{
		ID:               id,
		Owner:            testutil.Addr(9),
		RewardsRecipient: testutil.Addr(8),
		MetadataURI:      "ipfs://project",
		Contracts:        contracts,
		ActiveFromPeriod: 200,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return p, s.store.Create(ctx, p)
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	p, err := s.add(ctx, testutil.Addr(2), testutil.Addr(1))
	s.Require().NoError(err)

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Owner, got.Owner)
	s.Equal(p.RewardsRecipient, got.RewardsRecipient)
	s.Equal("ipfs://project", got.MetadataURI)
	s.Equal(domain.Period(200), got.ActiveFromPeriod)
	s.False(got.Suspended)
	s.ElementsMatch([]domain.Address{testutil.Addr(1), testutil.Addr(2)}, got.Contracts)

	owner, err := s.store.ProjectIDOfContract(ctx, testutil.Addr(2))
	s.Require().NoError(err)
	s.Equal(p.ID, owner)

	_, err = s.store.FindByID(ctx, p.ID+1)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestNextID_NeverReusesRemovedID() {
	ctx := context.Background()
	first, err := s.add(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Delete(ctx, first.ID))

	second, err := s.add(ctx)
	s.Require().NoError(err)
	s.Equal(domain.ProjectID(1), first.ID)
	s.Equal(domain.ProjectID(2), second.ID)
}

func (s *PostgresStoreSuite) TestCreate_ContractOwnedByAnotherProject() {
	ctx := context.Background()
	first, err := s.add(ctx, testutil.Addr(1))
	s.Require().NoError(err)

	_, err = s.add(ctx, testutil.Addr(3), testutil.Addr(1))
	s.True(errors.Is(err, sentinel.ErrConflict))

	owner, err := s.store.ProjectIDOfContract(ctx, testutil.Addr(1))
	s.Require().NoError(err)
	s.Equal(first.ID, owner)

	free, err := s.store.ProjectIDOfContract(ctx, testutil.Addr(3))
	s.Require().NoError(err)
	s.Zero(free, "rejected project registers none of its contracts")
}

func (s *PostgresStoreSuite) TestUpdate_ReplacesContracts() {
	ctx := context.Background()
	p, err := s.add(ctx, testutil.Addr(1), testutil.Addr(2))
	s.Require().NoError(err)

	p.Contracts = []domain.Address{testutil.Addr(2), testutil.Addr(3)}
	p.Suspend(250, time.Now())
	s.Require().NoError(s.store.Update(ctx, p), "a project may keep its own contracts")

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]domain.Address{testutil.Addr(2), testutil.Addr(3)}, got.Contracts)
	s.True(got.Suspended)
	s.Equal(domain.Period(250), got.ActiveToPeriod)

	released, err := s.store.ProjectIDOfContract(ctx, testutil.Addr(1))
	s.Require().NoError(err)
	s.Zero(released)

	p.ID = 99
	s.True(errors.Is(s.store.Update(ctx, p), sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestDelete_ReleasesContracts() {
	ctx := context.Background()
	first, err := s.add(ctx, testutil.Addr(1))
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, first.ID))
	s.True(errors.Is(s.store.Delete(ctx, first.ID), sentinel.ErrNotFound))

	owner, err := s.store.ProjectIDOfContract(ctx, testutil.Addr(1))
	s.Require().NoError(err)
	s.Zero(owner)

	second, err := s.add(ctx, testutil.Addr(1))
	s.Require().NoError(err, "released contract can be registered again")

	owner, err = s.store.ProjectIDOfContract(ctx, testutil.Addr(1))
	s.Require().NoError(err)
	s.Equal(second.ID, owner)
}

func (s *PostgresStoreSuite) TestFailedAddRollsBackID() {
	ctx := context.Background()
	_, err := s.add(ctx, testutil.Addr(1))
	s.Require().NoError(err)

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.add(ctx, testutil.Addr(1))
		return err
	})
	s.True(errors.Is(err, sentinel.ErrConflict))

	next, err := s.add(ctx)
	s.Require().NoError(err)
	s.Equal(domain.ProjectID(2), next.ID, "id taken by the rolled back add is handed out again")
}

func (s *PostgresStoreSuite) TestList() {
	ctx := context.Background()
	_, err := s.add(ctx, testutil.Addr(1))
	s.Require().NoError(err)
	_, err = s.add(ctx)
	s.Require().NoError(err)
	_, err = s.add(ctx, testutil.Addr(3), testutil.Addr(2))
	s.Require().NoError(err)

	got, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(domain.ProjectID(1), got[0].ID)
	s.Equal([]domain.Address{testutil.Addr(1)}, got[0].Contracts)
	s.Empty(got[1].Contracts)
	s.ElementsMatch([]domain.Address{testutil.Addr(2), testutil.Addr(3)}, got[2].Contracts)
}
