package models

import (
	"time"

	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
)

// Settings are the admin-tunable parameters of the withdrawal engine.
type Settings struct {
	// WithdrawalFrequencyLimit is the number of periods a project must wait
	// after a completed withdrawal before requesting the next one.
	WithdrawalFrequencyLimit uint64
	// ConfirmationsRequired is the quorum threshold.
	ConfirmationsRequired uint32
	// ConfirmationsDeviation is the tolerated difference between a submitted
	// amount and the established one, in basis points. Zero means exact match.
	ConfirmationsDeviation uint32
	// OracleAddress is the principal allowed to report new periods. Zero means
	// the period is advanced only by the process itself.
	OracleAddress domain.Address
	DeployedAt    time.Time
	UpdatedAt     time.Time
}

func (s *Settings) Validate() error {
	if s.ConfirmationsRequired == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "confirmations required must be at least 1")
	}
	if s.ConfirmationsDeviation > domain.BasisPoints {
		return dErrors.New(dErrors.CodeInvalidInput, "confirmations deviation must not exceed 10000 basis points")
	}
	return nil
}
