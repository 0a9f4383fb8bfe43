package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payout/pkg/domain"
	"payout/pkg/testutil"
)

// Scenarios walk a project through a full request and confirmation cycle
// using the suite fixture.

func (s *ServiceSuite) TestScenario_QuorumCompletesAndClosesRequest() {
	t := s.T()
	s.fund(1_000_000)

	s.Require().True(testutil.Given(t, "a request opened at period 200", func(t *testing.T) {
		r, err := s.service.RequestWithdrawal(s.ctx, s.owner, s.projectID)
		require.NoError(t, err)
		assert.Equal(t, domain.Period(200), r.RequestedPeriod)
	}))

	s.Require().True(testutil.When(t, "three providers agree on 5000", func(t *testing.T) {
		var last *Submission
		for i, p := range s.providers[:quorum] {
			sub, err := s.service.CompleteWithdrawal(s.ctx, p, s.projectID, 200, domain.NewAmount(5000))
			require.NoError(t, err)
			if i < quorum-1 {
				assert.Equal(t, ResultCounted, sub.Result)
			}
			last = sub
		}
		require.NotNil(t, last)
		assert.Equal(t, ResultCompleted, last.Result)
		assert.Equal(t, domain.Period(200), last.CompletionPeriod)
	}))

	testutil.Then(t, "the recipient is paid and late providers find no request", func(t *testing.T) {
		assert.Equal(t, "5000", s.recorder.Received(s.recipient).String())
		assert.Equal(t, "995000", s.balance())
		for _, p := range s.providers[quorum:] {
			_, err := s.service.CompleteWithdrawal(s.ctx, p, s.projectID, 200, domain.NewAmount(5000))
			assert.ErrorIs(t, err, ErrNoWithdrawalRequest)
		}
	})
}

func (s *ServiceSuite) TestScenario_MismatchResetsTally() {
	t := s.T()
	s.fund(1_000_000)
	s.request()

	s.Require().True(testutil.When(t, "two providers disagree on the amount", func(t *testing.T) {
		first, err := s.service.CompleteWithdrawal(s.ctx, s.providers[0], s.projectID, 200, domain.NewAmount(500))
		require.NoError(t, err)
		assert.Equal(t, ResultCounted, first.Result)

		second, err := s.service.CompleteWithdrawal(s.ctx, s.providers[1], s.projectID, 200, domain.NewAmount(1000))
		require.NoError(t, err)
		assert.Equal(t, ResultReset, second.Result)
		require.NotNil(t, second.Request)
		assert.True(t, second.Request.Confirmations.Value.IsZero())
		assert.Zero(t, second.Request.Confirmations.Count)
		assert.Empty(t, second.Request.Confirmations.Providers)
	}))

	testutil.Then(t, "the request stays pending and no funds move", func(t *testing.T) {
		pending, err := s.service.HasPendingWithdrawal(s.ctx, s.projectID, 200)
		require.NoError(t, err)
		assert.True(t, pending)
		assert.Equal(t, "1000000", s.balance())
		assert.True(t, s.recorder.Received(s.recipient).IsZero())
	})
}

func (s *ServiceSuite) TestScenario_SuspendThenEnable() {
	t := s.T()
	s.fund(1_000_000)

	s.Require().True(testutil.Given(t, "the project is suspended at period 250", func(t *testing.T) {
		require.NoError(t, s.counter.Advance(s.ctx, 250))
		require.NoError(t, s.projects.SuspendProject(s.ctx, s.manager, s.projectID))
	}))

	s.Require().True(testutil.When(t, "the owner requests while suspended", func(t *testing.T) {
		_, err := s.service.RequestWithdrawal(s.ctx, s.owner, s.projectID)
		assert.ErrorIs(t, err, ErrProjectDisabled)
	}))

	testutil.Then(t, "enabling later restarts the active window", func(t *testing.T) {
		require.NoError(t, s.counter.Advance(s.ctx, 300))
		require.NoError(t, s.projects.EnableProject(s.ctx, s.manager, s.projectID))

		p, err := s.projects.Get(s.ctx, s.projectID)
		require.NoError(t, err)
		assert.Equal(t, domain.Period(300), p.ActiveFromPeriod)
		assert.Zero(t, p.ActiveToPeriod)
		assert.True(t, p.IsActive())
	})
}
