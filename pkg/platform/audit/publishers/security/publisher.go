// Package security provides a non-blocking publisher for refused attempts.
//
// Refused operations roll back their unit of work, so their audit trail
// cannot ride on it. Events are buffered here and flushed in the background;
// under sustained pressure the oldest are dropped and counted.
package security

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "payout/pkg/platform/audit"
	"payout/pkg/platform/tx"
	"payout/pkg/requestcontext"
)

const (
	defaultCapacity      = 10000
	defaultFlushInterval = 500 * time.Millisecond
	flushBatch           = 256
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "payout_audit_security_dropped_total",
	Help: "Security audit events dropped because the buffer was full",
})

// Publisher buffers security events and appends them asynchronously.
type Publisher struct {
	store         audit.Store
	buffer        *RingBuffer
	runner        tx.Runner
	flushInterval time.Duration
	logger        *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithCapacity(n int) Option {
	return func(p *Publisher) {
		p.buffer = NewRingBuffer(n)
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

// WithTxRunner makes flushes run as units of work. Required when the store
// takes part in an in-memory unit of work, so a concurrent rollback cannot
// discard flushed events.
func WithTxRunner(r tx.Runner) Option {
	return func(p *Publisher) {
		p.runner = r
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:         store,
		buffer:        NewRingBuffer(defaultCapacity),
		flushInterval: defaultFlushInterval,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit enqueues the event and never blocks or fails.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	event.Category = audit.CategorySecurity
	if p.buffer.Enqueue(event) {
		droppedEvents.Inc()
	}
	return nil
}

// Run flushes until ctx is cancelled, then drains what is left.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			p.Flush(drainCtx)
			return ctx.Err()
		case <-ticker.C:
			p.Flush(ctx)
		}
	}
}

// Flush appends everything currently buffered. A batch that fails is put
// back for the next tick.
func (p *Publisher) Flush(ctx context.Context) {
	for {
		batch := p.buffer.DequeueBatch(flushBatch)
		if len(batch) == 0 {
			return
		}
		appendAll := func(ctx context.Context) error {
			for _, e := range batch {
				if err := p.store.Append(ctx, e); err != nil {
					return err
				}
			}
			return nil
		}
		var err error
		if p.runner != nil {
			err = p.runner.RunInTx(ctx, appendAll)
		} else {
			err = appendAll(ctx)
		}
		if err != nil {
			before := p.buffer.Dropped()
			p.buffer.Requeue(batch)
			droppedEvents.Add(float64(p.buffer.Dropped() - before))
			p.logger.WarnContext(ctx, "failed to flush security audit events",
				"count", len(batch),
				"error", err,
			)
			return
		}
	}
}
