package audit

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"payout/pkg/requestcontext"
)

// Publisher is implemented by the compliance and security publishers.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// LogAudit writes the event to the structured log and emits it. The emit
// error is returned so fail-closed callers can abort their unit of work.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Publisher, event Event) error {
	if logger != nil {
		args := []any{
			"event", event.Action,
			"log_type", "audit",
			"subject", event.Subject,
		}
		if event.ActorID != "" {
			args = append(args, "actor", event.ActorID)
		}
		if event.Reason != "" {
			args = append(args, "reason", event.Reason)
		}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		for _, k := range slices.Sorted(maps.Keys(event.Attributes)) {
			args = append(args, k, event.Attributes[k])
		}
		logger.InfoContext(ctx, event.Action, args...)
	}

	if publisher == nil {
		return nil
	}
	return publisher.Emit(ctx, event)
}
