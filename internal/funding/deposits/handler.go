// Package deposits applies push deposits consumed from the deposits topic.
package deposits

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"payout/internal/platform/kafka/consumer"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
)

// Receiver is the funder-gated push path of the funding ledger.
type Receiver interface {
	Receive(ctx context.Context, depositID uuid.UUID, sender domain.Address, amount domain.Amount) (bool, error)
}

// Message is the wire format of a push deposit.
type Message struct {
	ID     uuid.UUID      `json:"id"`
	Sender domain.Address `json:"sender"`
	Amount domain.Amount  `json:"amount"`
}

// Handler credits deposits. Refused and malformed deposits are committed
// past; only infrastructure failures stop the consumer.
type Handler struct {
	receiver Receiver
	logger   *slog.Logger
}

func NewHandler(receiver Receiver, logger *slog.Logger) *Handler {
	return &Handler{receiver: receiver, logger: logger}
}

func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	var deposit Message
	if err := json.Unmarshal(msg.Value, &deposit); err != nil {
		h.logger.Error("failed to unmarshal deposit",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	if deposit.ID == uuid.Nil {
		h.logger.Error("deposit without id", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}

	applied, err := h.receiver.Receive(ctx, deposit.ID, deposit.Sender, deposit.Amount)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			return fmt.Errorf("apply deposit %s: %w", deposit.ID, err)
		}
		h.logger.Warn("deposit refused",
			"deposit_id", deposit.ID,
			"sender", deposit.Sender.Hex(),
			"amount", deposit.Amount.String(),
			"reason", dErrors.Message(err),
		)
		return nil
	}
	if !applied {
		h.logger.Debug("deposit already applied", "deposit_id", deposit.ID)
		return nil
	}
	h.logger.Info("deposit applied",
		"deposit_id", deposit.ID,
		"sender", deposit.Sender.Hex(),
		"amount", deposit.Amount.String(),
	)
	return nil
}
