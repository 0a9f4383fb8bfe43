package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *counter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func (c *counter) Snapshot() func() {
	saved := c.value()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.n = saved
	}
}

func TestMemoryRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("commits writes when fn succeeds", func(t *testing.T) {
		c := &counter{}
		r := NewMemoryRunner(c)

		require.NoError(t, r.RunInTx(ctx, func(context.Context) error {
			c.inc()
			return nil
		}))
		assert.Equal(t, 1, c.value())
	})

	t.Run("restores participants when fn fails", func(t *testing.T) {
		c := &counter{}
		r := NewMemoryRunner(c)
		boom := errors.New("boom")

		err := r.RunInTx(ctx, func(context.Context) error {
			c.inc()
			c.inc()
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, c.value())
	})

	t.Run("restores participants and re-panics on panic", func(t *testing.T) {
		c := &counter{}
		r := NewMemoryRunner(c)

		assert.Panics(t, func() {
			_ = r.RunInTx(ctx, func(context.Context) error {
				c.inc()
				panic("boom")
			})
		})
		assert.Equal(t, 0, c.value())
	})

	t.Run("units never interleave", func(t *testing.T) {
		c := &counter{}
		r := NewMemoryRunner(c)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.RunInTx(ctx, func(context.Context) error {
					before := c.value()
					c.inc()
					if c.value() != before+1 {
						return errors.New("interleaved")
					}
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, c.value())
	})

	t.Run("cancelled context is rejected", func(t *testing.T) {
		r := NewMemoryRunner()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := r.RunInTx(cctx, func(context.Context) error { return nil })
		require.Error(t, err)
	})
}
