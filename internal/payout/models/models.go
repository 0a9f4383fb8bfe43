package models

import (
	"time"

	"github.com/google/uuid"

	"payout/pkg/domain"
)

// Kind names the operation that produced a payout.
type Kind string

const (
	KindWithdrawal     Kind = "withdrawal"
	KindFundsWithdrawn Kind = "funds_withdrawn"
)

// Status tracks dispatch of a payout instruction.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDispatching Status = "dispatching"
	StatusSent        Status = "sent"
)

// Instruction is a committed obligation to move Amount to Recipient. It is
// written in the same unit of work that debits the ledger and is dispatched
// only after that unit commits.
type Instruction struct {
	ID        uuid.UUID
	Kind      Kind
	Recipient domain.Address
	Amount    domain.Amount
	// ProjectID is set for quorum withdrawals.
	ProjectID domain.ProjectID
	// Period is the request period for quorum withdrawals.
	Period    domain.Period
	Status    Status
	Attempts  int
	LastError string
	CreatedAt time.Time
	ClaimedAt *time.Time
	SentAt    *time.Time
}

// NewInstruction creates a pending instruction.
func NewInstruction(kind Kind, recipient domain.Address, amount domain.Amount, now time.Time) *Instruction {
	return &Instruction{
		ID:        uuid.New(),
		Kind:      kind,
		Recipient: recipient,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
	}
}

// Claimable reports whether a dispatcher may take the instruction. A claim
// older than staleBefore is considered abandoned.
func (i *Instruction) Claimable(staleBefore time.Time) bool {
	switch i.Status {
	case StatusPending:
		return true
	case StatusDispatching:
		return i.ClaimedAt != nil && i.ClaimedAt.Before(staleBefore)
	default:
		return false
	}
}
