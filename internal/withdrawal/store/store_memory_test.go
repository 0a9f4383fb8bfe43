package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payout/internal/withdrawal/models"
	"payout/pkg/domain"
	"payout/pkg/platform/sentinel"
	"payout/pkg/testutil"
)

func TestInMemoryWithdrawalStore(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("requests are copied on the way in and out", func(t *testing.T) {
		s := NewInMemoryWithdrawalStore()
		r := models.NewRequest(1, 200, now)
		r.Confirm(testutil.Addr(1), domain.NewAmount(5), 0, now)
		require.NoError(t, s.SaveRequest(ctx, r))

		r.Confirm(testutil.Addr(2), domain.NewAmount(5), 0, now)
		got, err := s.FindRequest(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), got.Confirmations.Count)
	})

	t.Run("missing request", func(t *testing.T) {
		s := NewInMemoryWithdrawalStore()
		_, err := s.FindRequest(ctx, 1)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.NoError(t, s.DeleteRequest(ctx, 1))
	})

	t.Run("history defaults to never paid", func(t *testing.T) {
		s := NewInMemoryWithdrawalStore()
		h, err := s.LoadHistory(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectID(3), h.ProjectID)
		assert.False(t, h.Completed())

		h.Record(200, 1, domain.NewAmount(500), now)
		require.NoError(t, s.SaveHistory(ctx, h))
		h, err = s.LoadHistory(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, domain.Period(200), h.LastCompletionPeriod)
	})

	t.Run("list is ordered by project", func(t *testing.T) {
		s := NewInMemoryWithdrawalStore()
		require.NoError(t, s.SaveRequest(ctx, models.NewRequest(2, 10, now)))
		require.NoError(t, s.SaveRequest(ctx, models.NewRequest(1, 10, now)))
		list, err := s.ListRequests(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, domain.ProjectID(1), list[0].ProjectID)
	})

	t.Run("snapshot restores requests and history", func(t *testing.T) {
		s := NewInMemoryWithdrawalStore()
		require.NoError(t, s.SaveRequest(ctx, models.NewRequest(1, 10, now)))
		restore := s.Snapshot()

		require.NoError(t, s.DeleteRequest(ctx, 1))
		require.NoError(t, s.SaveHistory(ctx, &models.History{ProjectID: 1, Completions: 1}))
		restore()

		_, err := s.FindRequest(ctx, 1)
		assert.NoError(t, err)
		h, err := s.LoadHistory(ctx, 1)
		require.NoError(t, err)
		assert.False(t, h.Completed())
	})
}
