// Package epoch provides the period counter every time-window comparison in
// the ledger is made against.
//
// Services read the current period fresh on every call and never cache it.
package epoch

import (
	"context"
	"sync"

	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
)

//go:generate mockgen -source=epoch.go -destination=mocks/mocks.go -package=mocks Oracle

// ErrPeriodRegressed is returned when a report would move the counter backwards.
var ErrPeriodRegressed = dErrors.New(dErrors.CodeInvalidInput, "period must not decrease")

// Oracle exposes the monotonically non-decreasing current period.
type Oracle interface {
	CurrentPeriod(ctx context.Context) (domain.Period, error)
}

// Advancer is an Oracle whose counter can be moved forward by a reporter.
type Advancer interface {
	Oracle
	Advance(ctx context.Context, to domain.Period) error
}

// Counter is an in-process oracle.
type Counter struct {
	mu      sync.RWMutex
	current domain.Period
}

func NewCounter(start domain.Period) *Counter {
	return &Counter{current: start}
}

func (c *Counter) CurrentPeriod(context.Context) (domain.Period, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, nil
}

// Advance sets the counter to `to`. Reporting the current value again is a
// no-op.
func (c *Counter) Advance(_ context.Context, to domain.Period) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if to < c.current {
		return ErrPeriodRegressed
	}
	c.current = to
	return nil
}

// Snapshot implements ledger.Participant.
func (c *Counter) Snapshot() func() {
	c.mu.RLock()
	saved := c.current
	c.mu.RUnlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.current = saved
	}
}

func (*Counter) advancesInUnitOfWork() {}
