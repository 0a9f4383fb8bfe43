package models

import (
	"slices"
	"time"

	"payout/pkg/domain"
)

// Confirmations is the running tally of provider submissions for a pending
// request. Every provider in Providers submitted an amount within tolerance
// of Value.
type Confirmations struct {
	Value     domain.Amount
	Count     uint32
	Providers []domain.Address
}

// HasProvided reports whether provider is part of the current tally.
func (c *Confirmations) HasProvided(provider domain.Address) bool {
	return slices.Contains(c.Providers, provider)
}

func (c *Confirmations) Reset() {
	c.Value = domain.Amount{}
	c.Count = 0
	c.Providers = nil
}

// Request is the single pending withdrawal of a project.
type Request struct {
	ProjectID       domain.ProjectID
	RequestedPeriod domain.Period
	Confirmations   Confirmations
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRequest opens a request at period.
func NewRequest(id domain.ProjectID, period domain.Period, now time.Time) *Request {
	return &Request{
		ProjectID:       id,
		RequestedPeriod: period,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Outcome is the effect of one provider submission on the tally.
type Outcome int

const (
	// OutcomeCounted means the submission seeded or matched the tally.
	OutcomeCounted Outcome = iota
	// OutcomeMismatch means the submission disagreed and the tally was reset.
	OutcomeMismatch
)

// Confirm applies provider's submission. The first submission seeds Value; a
// later one within deviationBps of Value increments the count; anything else
// clears the tally. established is the value the submission was compared
// against, zero for a seed.
func (r *Request) Confirm(provider domain.Address, amount domain.Amount, deviationBps uint64, now time.Time) (established domain.Amount, outcome Outcome) {
	r.UpdatedAt = now
	c := &r.Confirmations
	if c.Count == 0 {
		c.Value = amount
		c.Count = 1
		c.Providers = []domain.Address{provider}
		return domain.Amount{}, OutcomeCounted
	}
	established = c.Value
	if !established.WithinDeviation(amount, deviationBps) {
		c.Reset()
		return established, OutcomeMismatch
	}
	c.Count++
	c.Providers = append(c.Providers, provider)
	return established, OutcomeCounted
}

// Reached reports whether the tally has met the quorum threshold.
func (r *Request) Reached(required uint32) bool {
	return r.Confirmations.Count >= required
}

func (r *Request) Clone() *Request {
	cp := *r
	cp.Confirmations.Providers = slices.Clone(r.Confirmations.Providers)
	return &cp
}

// History records the last completed withdrawal of a project. A project that
// never completed one has the zero History.
type History struct {
	ProjectID            domain.ProjectID
	Completions          uint64
	LastCompletionPeriod domain.Period
	// DepositsAtCompletion is the ledger deposit sequence number at the last
	// completion. A new request needs a deposit made after it.
	DepositsAtCompletion uint64
	LastAmount           domain.Amount
	UpdatedAt            time.Time
}

// Completed reports whether the project has ever been paid.
func (h *History) Completed() bool {
	return h.Completions > 0
}

// Record notes a completed withdrawal.
func (h *History) Record(period domain.Period, deposits uint64, amount domain.Amount, now time.Time) {
	h.Completions++
	h.LastCompletionPeriod = period
	h.DepositsAtCompletion = deposits
	h.LastAmount = amount
	h.UpdatedAt = now
}
