package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"payout/internal/payout/models"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/circuit"
	"payout/pkg/platform/tx"
	"payout/pkg/requestcontext"
)

const defaultClaimTTL = 2 * time.Minute

// Dispatcher claims committed instructions and hands them to the Transferer.
type Dispatcher struct {
	store      Store
	transferer Transferer
	tx         tx.Runner
	breaker    *circuit.Breaker
	claimTTL   time.Duration
	logger     *slog.Logger
	auditor    audit.Publisher
	metrics    *Metrics
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithAuditPublisher(p audit.Publisher) DispatcherOption {
	return func(d *Dispatcher) {
		d.auditor = p
	}
}

func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) DispatcherOption {
	return func(d *Dispatcher) {
		d.breaker = b
	}
}

// WithClaimTTL sets how long a claim is held before another dispatcher may
// retake the instruction.
func WithClaimTTL(ttl time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.claimTTL = ttl
	}
}

func NewDispatcher(store Store, transferer Transferer, runner tx.Runner, opts ...DispatcherOption) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("payout store is required")
	}
	if transferer == nil {
		return nil, errors.New("transferer is required")
	}
	if runner == nil {
		return nil, errors.New("tx runner is required")
	}
	d := &Dispatcher{
		store:      store,
		transferer: transferer,
		tx:         runner,
		breaker:    circuit.New("transfer"),
		claimTTL:   defaultClaimTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// AfterCommit dispatches instructions enqueued by a unit of work that has just
// committed. While the transfer circuit is open they are left to the Worker.
// Failures are logged, never returned: the operation that produced the
// instruction has already succeeded.
func (d *Dispatcher) AfterCommit(ctx context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		if d.breaker.IsOpen() {
			d.logger.WarnContext(ctx, "transfer circuit open, payout deferred to retry worker",
				"payout_id", id,
			)
			continue
		}
		if err := d.Dispatch(ctx, id); err != nil {
			d.logger.ErrorContext(ctx, "payout dispatch failed",
				"payout_id", id,
				"error", err,
			)
		}
	}
}

// Dispatch claims and transfers one instruction. An instruction held by
// another dispatcher or already sent is skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, id uuid.UUID) error {
	var instr *models.Instruction
	err := d.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		claimed, ok, err := d.store.Claim(ctx, id, now, now.Add(-d.claimTTL))
		if err != nil {
			return err
		}
		if ok {
			instr = claimed
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("claim payout %s: %w", id, err)
	}
	if instr == nil {
		return nil
	}

	if transferErr := d.transferer.Transfer(ctx, instr); transferErr != nil {
		d.onFailure(ctx, instr, transferErr)
		return fmt.Errorf("transfer payout %s: %w", id, transferErr)
	}
	return d.onSuccess(ctx, instr)
}

func (d *Dispatcher) onSuccess(ctx context.Context, instr *models.Instruction) error {
	_, change := d.breaker.RecordSuccess()
	if change.Closed {
		d.logger.InfoContext(ctx, "transfer circuit closed")
		d.metrics.SetBreakerOpen(false)
	}
	d.metrics.IncDispatched(string(instr.Kind))

	if err := d.tx.RunInTx(ctx, func(ctx context.Context) error {
		return d.store.MarkSent(ctx, instr.ID, requestcontext.Now(ctx))
	}); err != nil {
		// The transfer happened; the claim expires and the retry carries the
		// same instruction id for downstream deduplication.
		return fmt.Errorf("mark payout %s sent: %w", instr.ID, err)
	}
	d.record(ctx, audit.EventPayoutDispatched, instr, "")
	return nil
}

func (d *Dispatcher) onFailure(ctx context.Context, instr *models.Instruction, cause error) {
	d.metrics.IncFailures()
	if _, change := d.breaker.RecordFailure(); change.Opened {
		d.logger.WarnContext(ctx, "transfer circuit opened", "error", cause)
		d.metrics.SetBreakerOpen(true)
	}
	if err := d.tx.RunInTx(ctx, func(ctx context.Context) error {
		return d.store.Release(ctx, instr.ID, cause.Error())
	}); err != nil {
		d.logger.ErrorContext(ctx, "failed to release payout", "payout_id", instr.ID, "error", err)
	}
	d.record(ctx, audit.EventPayoutFailed, instr, cause.Error())
}

func (d *Dispatcher) record(ctx context.Context, event audit.AuditEvent, instr *models.Instruction, reason string) {
	attrs := map[string]string{
		"payout_id": instr.ID.String(),
		"kind":      string(instr.Kind),
		"recipient": instr.Recipient.Hex(),
		"amount":    instr.Amount.String(),
		"attempts":  strconv.Itoa(instr.Attempts),
	}
	if !instr.ProjectID.IsNil() {
		attrs["project_id"] = instr.ProjectID.String()
	}
	err := d.tx.RunInTx(ctx, func(ctx context.Context) error {
		return audit.LogAudit(ctx, d.logger, d.auditor, audit.Event{
			Action:     string(event),
			Subject:    "payout:" + instr.ID.String(),
			Reason:     reason,
			Attributes: attrs,
		})
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to record payout event", "payout_id", instr.ID, "error", err)
	}
}

// Recent lists the latest payout instructions.
func (d *Dispatcher) Recent(ctx context.Context, limit int) ([]*models.Instruction, error) {
	return d.store.ListRecent(ctx, limit)
}
