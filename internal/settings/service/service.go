// Package service owns the withdrawal engine settings: deployment
// initialisation and the admin-gated updates.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"payout/internal/access"
	"payout/internal/settings/models"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/sentinel"
	"payout/pkg/platform/tx"
	"payout/pkg/requestcontext"
)

var (
	ErrNotAdmin       = dErrors.New(dErrors.CodeForbidden, "not admin")
	ErrNotInitialized = dErrors.New(dErrors.CodeInvariantViolation, "ledger not initialised")
)

type Store interface {
	Load(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

type Service struct {
	store    Store
	policy   access.Policy
	tx       tx.Runner
	logger   *slog.Logger
	auditor  audit.Publisher
	security audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithSecurityPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.security = p
	}
}

func New(store Store, policy access.Policy, runner tx.Runner, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("settings store is required")
	}
	if policy == nil {
		return nil, errors.New("access policy is required")
	}
	if runner == nil {
		return nil, errors.New("tx runner is required")
	}
	s := &Service{store: store, policy: policy, tx: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize stores the deployment settings once and emits contract_deployed.
// Later calls return the stored settings unchanged.
func (s *Service) Initialize(ctx context.Context, initial models.Settings) (*models.Settings, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	var out *models.Settings
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.store.Load(ctx)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
		}

		now := requestcontext.Now(ctx)
		initial.DeployedAt = now
		initial.UpdatedAt = now
		if err := s.store.Save(ctx, &initial); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
		}
		out = &initial
		return audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
			Action:  string(audit.EventContractDeployed),
			Subject: "settings",
			Attributes: map[string]string{
				"oracle_address":             initial.OracleAddress.Hex(),
				"withdrawal_frequency_limit": strconv.FormatUint(initial.WithdrawalFrequencyLimit, 10),
				"confirmations_required":     strconv.FormatUint(uint64(initial.ConfirmationsRequired), 10),
				"confirmations_deviation":    strconv.FormatUint(uint64(initial.ConfirmationsDeviation), 10),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Current returns the settings in force.
func (s *Service) Current(ctx context.Context) (*models.Settings, error) {
	settings, err := s.store.Load(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	return settings, nil
}

// OracleAddress returns the principal allowed to report periods.
func (s *Service) OracleAddress(ctx context.Context) (domain.Address, error) {
	settings, err := s.Current(ctx)
	if err != nil {
		return domain.ZeroAddress, err
	}
	return settings.OracleAddress, nil
}

func (s *Service) UpdateWithdrawalFrequencyLimit(ctx context.Context, caller domain.Address, limit uint64) error {
	return s.update(ctx, caller, audit.EventWithdrawalEpochsLimitUpdated, strconv.FormatUint(limit, 10),
		func(st *models.Settings) { st.WithdrawalFrequencyLimit = limit })
}

func (s *Service) UpdateConfirmationsRequired(ctx context.Context, caller domain.Address, required uint32) error {
	return s.update(ctx, caller, audit.EventWithdrawalConfirmationsLimitUpdated, strconv.FormatUint(uint64(required), 10),
		func(st *models.Settings) { st.ConfirmationsRequired = required })
}

func (s *Service) UpdateConfirmationsDeviation(ctx context.Context, caller domain.Address, bps uint32) error {
	return s.update(ctx, caller, audit.EventWithdrawalConfirmationsDeviationUpdate, strconv.FormatUint(uint64(bps), 10),
		func(st *models.Settings) { st.ConfirmationsDeviation = bps })
}

func (s *Service) UpdateOracleAddress(ctx context.Context, caller domain.Address, oracle domain.Address) error {
	return s.update(ctx, caller, audit.EventOracleAddressUpdated, oracle.Hex(),
		func(st *models.Settings) { st.OracleAddress = oracle })
}

func (s *Service) update(
	ctx context.Context,
	caller domain.Address,
	event audit.AuditEvent,
	value string,
	apply func(*models.Settings),
) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Require(ctx, s.policy, caller, access.RoleAdmin, ErrNotAdmin); err != nil {
			return err
		}
		current, err := s.Current(ctx)
		if err != nil {
			return err
		}
		apply(current)
		if err := current.Validate(); err != nil {
			return err
		}
		current.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Save(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
		}
		return audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
			Action:     string(event),
			ActorID:    caller.Hex(),
			Subject:    "settings",
			Attributes: map[string]string{"value": value},
		})
	})
	if errors.Is(err, ErrNotAdmin) {
		_ = audit.LogAudit(ctx, s.logger, s.security, audit.Event{
			Action:     string(audit.EventAccessDenied),
			ActorID:    caller.Hex(),
			Subject:    "settings",
			Reason:     ErrNotAdmin.Error(),
			Attributes: map[string]string{"attempted": string(event)},
		})
	}
	return err
}
