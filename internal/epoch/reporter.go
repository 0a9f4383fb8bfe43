package epoch

import (
	"context"
	"errors"
	"log/slog"

	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/tx"
)

// ErrNotOracle is returned when the caller is not the configured oracle address.
var ErrNotOracle = dErrors.New(dErrors.CodeForbidden, "not oracle")

// OracleAddressSource returns the principal allowed to report periods.
type OracleAddressSource interface {
	OracleAddress(ctx context.Context) (domain.Address, error)
}

// Reporter accepts period reports from the configured oracle address.
type Reporter struct {
	counter  Advancer
	source   OracleAddressSource
	tx       tx.Runner
	logger   *slog.Logger
	auditor  audit.Publisher
	security audit.Publisher
}

type ReporterOption func(*Reporter)

func WithLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		r.logger = logger
	}
}

func WithAuditPublisher(p audit.Publisher) ReporterOption {
	return func(r *Reporter) {
		r.auditor = p
	}
}

func WithSecurityPublisher(p audit.Publisher) ReporterOption {
	return func(r *Reporter) {
		r.security = p
	}
}

func NewReporter(counter Advancer, source OracleAddressSource, runner tx.Runner, opts ...ReporterOption) (*Reporter, error) {
	if counter == nil {
		return nil, errors.New("period counter is required")
	}
	if source == nil {
		return nil, errors.New("oracle address source is required")
	}
	if runner == nil {
		return nil, errors.New("tx runner is required")
	}
	r := &Reporter{counter: counter, source: source, tx: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// unitOfWorkAdvancer marks counters whose Advance is written through the
// unit of work in ctx and so rolls back with it.
type unitOfWorkAdvancer interface {
	advancesInUnitOfWork()
}

// Report advances the period and records epoch_reported.
//
// A counter that joins the unit of work (Counter, PostgresOracle) moves inside
// it, after the audit append. Any other counter (RedisOracle) moves only once
// the unit has committed, so a failed commit never leaves the period ahead of
// the audit trail. If that late advance loses a race with a concurrent higher
// report it returns ErrPeriodRegressed and the committed event records a
// report that was superseded.
func (r *Reporter) Report(ctx context.Context, caller domain.Address, period domain.Period) error {
	_, inUnit := r.counter.(unitOfWorkAdvancer)
	advance := false
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		oracle, err := r.source.OracleAddress(ctx)
		if err != nil {
			return err
		}
		if oracle.IsZero() || caller != oracle {
			return ErrNotOracle
		}
		current, err := r.counter.CurrentPeriod(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read current period")
		}
		if period < current {
			return ErrPeriodRegressed
		}
		if period == current {
			return nil
		}
		if err := audit.LogAudit(ctx, r.logger, r.auditor, audit.Event{
			Action:  string(audit.EventEpochReported),
			ActorID: caller.Hex(),
			Subject: "epoch",
			Attributes: map[string]string{
				"previous": current.String(),
				"period":   period.String(),
			},
		}); err != nil {
			return err
		}
		if inUnit {
			return r.counter.Advance(ctx, period)
		}
		advance = true
		return nil
	})
	if err == nil && advance {
		if err := r.counter.Advance(ctx, period); err != nil {
			r.logger.WarnContext(ctx, "period not advanced after commit",
				"period", period.String(),
				"error", err,
			)
			return err
		}
	}
	if errors.Is(err, ErrNotOracle) {
		_ = audit.LogAudit(ctx, r.logger, r.security, audit.Event{
			Action:     string(audit.EventAccessDenied),
			ActorID:    caller.Hex(),
			Subject:    "epoch",
			Reason:     ErrNotOracle.Error(),
			Attributes: map[string]string{"attempted": string(audit.EventEpochReported)},
		})
	}
	return err
}
