package models

import "payout/pkg/domain"

// Wait names the rule that blocks a new request.
type Wait string

const (
	WaitNone     Wait = ""
	WaitPending  Wait = "pending_request"
	WaitUnfunded Wait = "no_deposit_since_last_withdrawal"
	WaitInterval Wait = "frequency_limit"
)

// RatePolicy decides whether a project may open a new withdrawal request.
type RatePolicy struct {
	// FrequencyLimit is the number of periods that must elapse after a
	// completion before the next request.
	FrequencyLimit uint64
}

// Check returns the first rule blocking a request at now, or WaitNone.
// deposits is the ledger's deposit sequence number; a project may only
// request again once the ledger has been funded after its last completion.
func (p RatePolicy) Check(now domain.Period, deposits uint64, history *History, pending bool) Wait {
	if pending {
		return WaitPending
	}
	if deposits <= history.DepositsAtCompletion {
		return WaitUnfunded
	}
	if history.Completed() && now.Since(history.LastCompletionPeriod) < p.FrequencyLimit {
		return WaitInterval
	}
	return WaitNone
}
