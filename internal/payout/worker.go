package payout

import (
	"context"
	"log/slog"
	"time"

	"payout/pkg/requestcontext"
)

const (
	defaultRetryInterval = 5 * time.Second
	defaultRetryBatch    = 50
)

// Worker retries instructions whose dispatch failed or was abandoned.
type Worker struct {
	dispatcher *Dispatcher
	interval   time.Duration
	batch      int
	logger     *slog.Logger
}

type WorkerOption func(*Worker)

func WithRetryInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithRetryBatch(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func NewWorker(dispatcher *Dispatcher, opts ...WorkerOption) *Worker {
	w := &Worker{
		dispatcher: dispatcher,
		interval:   defaultRetryInterval,
		batch:      defaultRetryBatch,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run retries on every tick until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RetryOnce(ctx); err != nil {
				w.logger.WarnContext(ctx, "payout retry pass failed", "error", err)
			}
		}
	}
}

// RetryOnce dispatches one batch of claimable instructions and returns how
// many were sent. It stops at the first transfer failure so a broken
// transferer is not hammered.
func (w *Worker) RetryOnce(ctx context.Context) (int, error) {
	d := w.dispatcher
	now := requestcontext.Now(ctx)
	pending, err := d.store.ListClaimable(ctx, now.Add(-d.claimTTL), w.batch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, instr := range pending {
		if err := d.Dispatch(ctx, instr.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
