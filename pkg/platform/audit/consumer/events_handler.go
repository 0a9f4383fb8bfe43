package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"payout/internal/platform/kafka/consumer"
	audit "payout/pkg/platform/audit"
	auditpg "payout/pkg/platform/audit/store/postgres"
)

// EventStore materializes relayed events for querying.
type EventStore interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// EventsHandler writes relayed audit events into audit_events. Writes are
// idempotent on the event id, so redelivery is harmless.
type EventsHandler struct {
	store  EventStore
	logger *slog.Logger
}

func NewEventsHandler(store EventStore, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{store: store, logger: logger}
}

// Handle processes one relayed audit event.
func (h *EventsHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var payload auditpg.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Error("failed to unmarshal audit payload",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		// Return nil to commit - malformed messages should not block
		return nil
	}

	eventID, event, err := payload.Event()
	if err != nil {
		h.logger.Error("malformed audit payload",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	if err := h.store.AppendWithID(ctx, eventID, event); err != nil {
		h.logger.Error("failed to store audit event",
			"event_id", eventID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store audit event: %w", err)
	}

	h.logger.Debug("stored audit event",
		"event_id", eventID,
		"action", event.Action,
		"subject", event.Subject,
	)
	return nil
}

// Publish lets the handler stand in for a broker when Kafka is not
// configured: the outbox relay then materializes events in-process.
func (h *EventsHandler) Publish(ctx context.Context, topic string, key, value []byte) error {
	return h.Handle(ctx, &consumer.Message{Topic: topic, Key: key, Value: value})
}
