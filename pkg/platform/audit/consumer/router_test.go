package consumer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payout/internal/platform/kafka/consumer"
	audit "payout/pkg/platform/audit"
)

type countingHandler struct {
	topics []string
}

func (h *countingHandler) Handle(_ context.Context, msg *consumer.Message) error {
	h.topics = append(h.topics, msg.Topic)
	return nil
}

func newTestRouter() *Router {
	return NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), func(c string) string {
		return "payout.audit." + c
	})
}

func TestRouter_RoutesByCategory(t *testing.T) {
	h := &countingHandler{}
	r := newTestRouter()
	r.Route(h, audit.CategorySecurity, audit.CategoryCompliance)

	assert.Equal(t, []string{"payout.audit.compliance", "payout.audit.security"}, r.Topics())

	ctx := context.Background()
	require.NoError(t, r.Handle(ctx, &consumer.Message{Topic: "payout.audit.security"}))
	require.NoError(t, r.Handle(ctx, &consumer.Message{Topic: "payout.audit.compliance"}))
	assert.Equal(t, []string{"payout.audit.security", "payout.audit.compliance"}, h.topics)
}

func TestRouter_UnroutedTopicIsSkipped(t *testing.T) {
	h := &countingHandler{}
	r := newTestRouter()
	r.Route(h, audit.CategoryCompliance)

	err := r.Handle(context.Background(), &consumer.Message{Topic: "payout.audit.operations", Key: []byte("k")})

	require.NoError(t, err)
	assert.Empty(t, h.topics)
}
