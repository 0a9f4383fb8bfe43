//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"payout/internal/settings/models"
	"payout/internal/settings/store"
	"payout/pkg/platform/sentinel"
	"payout/pkg/testutil"
	"payout/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresSettingsStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresSettingsStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "ledger_settings"))
}

func settingsAt(deployed time.Time) *models.Settings {
	return &models.Settings{
		WithdrawalFrequencyLimit: 10,
		ConfirmationsRequired:    3,
		ConfirmationsDeviation:   50,
		OracleAddress:            testutil.Addr(5),
		DeployedAt:               deployed,
		UpdatedAt:                deployed,
	}
}

func (s *PostgresStoreSuite) TestLoad_BeforeInit() {
	_, err := s.store.Load(context.Background())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestSaveRoundTrip() {
	ctx := context.Background()
	deployed := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Save(ctx, settingsAt(deployed)))

	got, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(10), got.WithdrawalFrequencyLimit)
	s.Equal(uint32(3), got.ConfirmationsRequired)
	s.Equal(uint32(50), got.ConfirmationsDeviation)
	s.Equal(testutil.Addr(5), got.OracleAddress)
	s.True(deployed.Equal(got.DeployedAt))
}

func (s *PostgresStoreSuite) TestSave_SingleRowKeepsDeployedAt() {
	ctx := context.Background()
	deployed := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Save(ctx, settingsAt(deployed)))

	later := deployed.Add(time.Hour)
	changed := settingsAt(later)
	changed.ConfirmationsRequired = 5
	changed.OracleAddress = testutil.Addr(6)
	s.Require().NoError(s.store.Save(ctx, changed))

	got, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(uint32(5), got.ConfirmationsRequired)
	s.Equal(testutil.Addr(6), got.OracleAddress)
	s.True(deployed.Equal(got.DeployedAt), "deployment time is written once")
	s.True(later.Equal(got.UpdatedAt))

	var rows int
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx, `SELECT count(*) FROM ledger_settings`).Scan(&rows))
	s.Equal(1, rows)
}

func (s *PostgresStoreSuite) TestSave_RejectsZeroQuorum() {
	invalid := settingsAt(time.Now())
	invalid.ConfirmationsRequired = 0
	s.Error(s.store.Save(context.Background(), invalid))
}
