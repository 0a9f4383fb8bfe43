package epoch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(5)

	p, err := c.CurrentPeriod(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, p)

	require.NoError(t, c.Advance(ctx, 5), "same period is accepted")
	require.NoError(t, c.Advance(ctx, 9))
	assert.ErrorIs(t, c.Advance(ctx, 8), ErrPeriodRegressed)

	p, err = c.CurrentPeriod(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9, p)
}

func TestCounter_Snapshot(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(5)

	restore := c.Snapshot()
	require.NoError(t, c.Advance(ctx, 9))
	restore()

	p, err := c.CurrentPeriod(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, p)
}
