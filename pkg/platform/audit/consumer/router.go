package consumer

import (
	"context"
	"log/slog"
	"slices"

	"payout/internal/platform/kafka/consumer"
	audit "payout/pkg/platform/audit"
)

// TopicHandler handles messages from a specific topic.
type TopicHandler interface {
	Handle(ctx context.Context, msg *consumer.Message) error
}

// Router fans relayed audit topics back into handlers by event category.
type Router struct {
	topicOf  func(category string) string
	handlers map[string]TopicHandler
	logger   *slog.Logger
}

// NewRouter builds a router; topicOf maps a category to its topic name and
// must match the relay's naming.
func NewRouter(logger *slog.Logger, topicOf func(category string) string) *Router {
	return &Router{
		topicOf:  topicOf,
		handlers: make(map[string]TopicHandler),
		logger:   logger,
	}
}

// Route sends every category's topic to handler.
func (r *Router) Route(handler TopicHandler, categories ...audit.EventCategory) {
	for _, c := range categories {
		r.handlers[r.topicOf(string(c))] = handler
	}
}

// Topics lists the routed topics in sorted order.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

// Handle dispatches msg. Unrouted topics are skipped so their offsets commit.
func (r *Router) Handle(ctx context.Context, msg *consumer.Message) error {
	handler, ok := r.handlers[msg.Topic]
	if !ok {
		r.logger.WarnContext(ctx, "no audit handler for topic, skipping message",
			"topic", msg.Topic,
			"key", string(msg.Key),
		)
		return nil
	}
	return handler.Handle(ctx, msg)
}
