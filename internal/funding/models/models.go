package models

import (
	"time"

	"payout/pkg/domain"
)

// Ledger is the pooled balance. Deposits counts every credit ever applied so
// the withdrawal policy can tell whether funds arrived after a completion
// that happened in the same period.
type Ledger struct {
	Balance          domain.Amount
	LastFundedPeriod domain.Period
	Deposits         uint64
	UpdatedAt        time.Time
}

// Credit adds amount and records the period it arrived in.
func (l *Ledger) Credit(amount domain.Amount, period domain.Period, now time.Time) {
	l.Balance = l.Balance.Add(amount)
	l.LastFundedPeriod = period
	l.Deposits++
	l.UpdatedAt = now
}

// Debit removes amount. It reports false and leaves the ledger untouched when
// the balance is short.
func (l *Ledger) Debit(amount domain.Amount, now time.Time) bool {
	rest, ok := l.Balance.Sub(amount)
	if !ok {
		return false
	}
	l.Balance = rest
	l.UpdatedAt = now
	return true
}
