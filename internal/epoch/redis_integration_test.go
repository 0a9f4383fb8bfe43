//go:build integration

package epoch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"payout/internal/epoch"
	"payout/pkg/domain"
	"payout/pkg/testutil/containers"
)

type RedisOracleSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	oracle *epoch.RedisOracle
}

func TestRedisOracleSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisOracleSuite))
}

func (s *RedisOracleSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.oracle = epoch.NewRedisOracle(s.redis.Client, "payout:epoch")
}

func (s *RedisOracleSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisOracleSuite) TestUnsetKeyReadsZero() {
	got, err := s.oracle.CurrentPeriod(context.Background())
	s.Require().NoError(err)
	s.Equal(domain.Period(0), got)
}

func (s *RedisOracleSuite) TestAdvance() {
	ctx := context.Background()
	s.Require().NoError(s.oracle.Advance(ctx, 200))
	s.Require().NoError(s.oracle.Advance(ctx, 200), "same period is accepted")

	got, err := s.oracle.CurrentPeriod(ctx)
	s.Require().NoError(err)
	s.Equal(domain.Period(200), got)
}

func (s *RedisOracleSuite) TestAdvance_RejectsRegression() {
	ctx := context.Background()
	s.Require().NoError(s.oracle.Advance(ctx, 10))

	err := s.oracle.Advance(ctx, 9)
	s.ErrorIs(err, epoch.ErrPeriodRegressed)

	got, err := s.oracle.CurrentPeriod(ctx)
	s.Require().NoError(err)
	s.Equal(domain.Period(10), got)
}
