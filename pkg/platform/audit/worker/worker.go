package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditpg "payout/pkg/platform/audit/store/postgres"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// OutboxStore is the relay's view of the outbox table.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]auditpg.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Publisher delivers one record to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Worker relays outbox rows to Kafka. Rows are marked published only after
// the broker acknowledged them, so delivery is at-least-once; consumers
// dedupe on the event id.
type Worker struct {
	store        OutboxStore
	publisher    Publisher
	topicPrefix  string
	batchSize    int
	pollInterval time.Duration
	logger       *slog.Logger
}

type Option func(*Worker)

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// NewWorker builds a relay that publishes to "<topicPrefix>.<category>".
func NewWorker(store OutboxStore, publisher Publisher, topicPrefix string, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		publisher:    publisher,
		topicPrefix:  topicPrefix,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Topic returns the topic an outbox category is relayed to.
func (w *Worker) Topic(category string) string {
	return w.topicPrefix + "." + category
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RelayOnce(ctx); err != nil {
				w.logger.WarnContext(ctx, "outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many rows were relayed.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.store.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	published := make([]uuid.UUID, 0, len(entries))
	var publishErr error
	for _, e := range entries {
		if err := w.publisher.Publish(ctx, w.Topic(e.Category), []byte(e.AggregateID), e.Payload); err != nil {
			publishErr = err
			break
		}
		published = append(published, e.ID)
	}

	if err := w.store.MarkPublished(ctx, published); err != nil {
		return 0, err
	}
	return len(published), publishErr
}
