// Package payout moves funds out of the ledger after the unit of work that
// debited it has committed.
//
// Services enqueue an Instruction inside their unit of work and call
// Dispatcher.Dispatch once it commits. The transfer runs outside the ledger
// lock, so a recipient reacting to the transfer by calling back into the
// ledger sees the committed state. Failed dispatches stay pending and are
// retried by the Worker.
package payout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"payout/internal/payout/models"
)

//go:generate mockgen -source=payout.go -destination=mocks/mocks.go -package=mocks Transferer Store

// Transferer performs the external transfer of an instruction.
type Transferer interface {
	Transfer(ctx context.Context, instr *models.Instruction) error
}

// Store persists payout instructions.
type Store interface {
	Enqueue(ctx context.Context, instr *models.Instruction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Instruction, error)
	Claim(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (*models.Instruction, bool, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	Release(ctx context.Context, id uuid.UUID, reason string) error
	ListClaimable(ctx context.Context, staleBefore time.Time, limit int) ([]*models.Instruction, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Instruction, error)
}
