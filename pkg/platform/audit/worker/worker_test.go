package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditpg "payout/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	entries   []auditpg.OutboxEntry
	published []uuid.UUID
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]auditpg.OutboxEntry, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	f.published = append(f.published, ids...)
	return nil
}

type recordingPublisher struct {
	topics []string
	failAt int
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _, _ []byte) error {
	if p.failAt > 0 && len(p.topics)+1 == p.failAt {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func TestRelayOnce(t *testing.T) {
	entry := func(category string) auditpg.OutboxEntry {
		return auditpg.OutboxEntry{ID: uuid.New(), Category: category, AggregateID: "project:1", Payload: []byte(`{}`)}
	}

	t.Run("publishes each row to its category topic and marks it", func(t *testing.T) {
		outbox := &fakeOutbox{entries: []auditpg.OutboxEntry{entry("compliance"), entry("security")}}
		pub := &recordingPublisher{}
		w := NewWorker(outbox, pub, "payout.audit")

		n, err := w.RelayOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"payout.audit.compliance", "payout.audit.security"}, pub.topics)
		assert.Len(t, outbox.published, 2)
	})

	t.Run("stops at the first failure and only marks what was delivered", func(t *testing.T) {
		outbox := &fakeOutbox{entries: []auditpg.OutboxEntry{entry("compliance"), entry("compliance"), entry("compliance")}}
		pub := &recordingPublisher{failAt: 2}
		w := NewWorker(outbox, pub, "payout.audit")

		n, err := w.RelayOnce(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []uuid.UUID{outbox.entries[0].ID}, outbox.published)
	})
}
