//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"payout/internal/access"
	"payout/internal/access/store"
	"payout/internal/ledger"
	"payout/pkg/domain"
	"payout/pkg/testutil"
	"payout/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresRoleStore
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
	s.store = store.NewPostgresRoleStore(s.postgres.DB)
	s.runner = ledger.NewPostgresRunner(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "role_members"))
}

func (s *PostgresStoreSuite) has(role access.Role, member domain.Address) bool {
	ok, err := s.store.Has(context.Background(), role, member)
	s.Require().NoError(err)
	return ok
}

func (s *PostgresStoreSuite) TestGrant() {
	ctx := context.Background()

	added, err := s.store.Grant(ctx, access.RoleFunder, testutil.Addr(1))
	s.Require().NoError(err)
	s.True(added)

	again, err := s.store.Grant(ctx, access.RoleFunder, testutil.Addr(1))
	s.Require().NoError(err)
	s.False(again, "granting a held role changes nothing")

	s.True(s.has(access.RoleFunder, testutil.Addr(1)))
	s.False(s.has(access.RoleAdmin, testutil.Addr(1)), "roles are held independently")
}

func (s *PostgresStoreSuite) TestRevoke() {
	ctx := context.Background()
	_, err := s.store.Grant(ctx, access.RoleRewardsDataProvider, testutil.Addr(1))
	s.Require().NoError(err)

	removed, err := s.store.Revoke(ctx, access.RoleRewardsDataProvider, testutil.Addr(1))
	s.Require().NoError(err)
	s.True(removed)

	again, err := s.store.Revoke(ctx, access.RoleRewardsDataProvider, testutil.Addr(1))
	s.Require().NoError(err)
	s.False(again)
	s.False(s.has(access.RoleRewardsDataProvider, testutil.Addr(1)))
}

func (s *PostgresStoreSuite) TestMembers() {
	ctx := context.Background()
	for _, n := range []byte{3, 1, 2} {
		_, err := s.store.Grant(ctx, access.RoleRewardsDataProvider, testutil.Addr(n))
		s.Require().NoError(err)
	}
	_, err := s.store.Grant(ctx, access.RoleFundsManager, testutil.Addr(4))
	s.Require().NoError(err)

	got, err := s.store.Members(ctx, access.RoleRewardsDataProvider)
	s.Require().NoError(err)
	s.Equal([]domain.Address{testutil.Addr(1), testutil.Addr(2), testutil.Addr(3)}, got)

	none, err := s.store.Members(ctx, access.RoleProjectsManager)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *PostgresStoreSuite) TestRollbackDiscardsGrant() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Grant(ctx, access.RoleAdmin, testutil.Addr(7)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	s.False(s.has(access.RoleAdmin, testutil.Addr(7)))
}
