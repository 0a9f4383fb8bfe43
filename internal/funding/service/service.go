// Package service implements the funding ledger: funder deposits, funds
// manager withdrawals and the debit path used by quorum payouts.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"payout/internal/access"
	"payout/internal/epoch"
	"payout/internal/funding/models"
	payoutmodels "payout/internal/payout/models"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/tx"
	"payout/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=../mocks/mocks.go -package=mocks Outbox Dispatcher

var (
	ErrNotFunder           = dErrors.New(dErrors.CodeForbidden, "not funder")
	ErrNotFundsManager     = dErrors.New(dErrors.CodeForbidden, "not funds manager")
	ErrNoFunds             = dErrors.New(dErrors.CodeInvalidInput, "no funds sent")
	ErrInsufficientBalance = dErrors.New(dErrors.CodePolicyViolation, "insufficient balance")
	ErrInvalidRecipient    = dErrors.New(dErrors.CodeInvalidInput, "recipient is required")
)

type Store interface {
	Load(ctx context.Context) (*models.Ledger, error)
	Save(ctx context.Context, ledger *models.Ledger) error
	MarkDeposit(ctx context.Context, id uuid.UUID) (bool, error)
}

// Outbox receives transfer instructions inside the unit of work that debits
// the ledger.
type Outbox interface {
	Enqueue(ctx context.Context, instr *payoutmodels.Instruction) error
}

// Dispatcher sends committed instructions.
type Dispatcher interface {
	AfterCommit(ctx context.Context, ids ...uuid.UUID)
}

type Service struct {
	store      Store
	policy     access.Policy
	oracle     epoch.Oracle
	tx         tx.Runner
	outbox     Outbox
	dispatcher Dispatcher
	logger     *slog.Logger
	auditor    audit.Publisher
	security   audit.Publisher
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

// WithDispatcher sends withdrawals as soon as they commit. Without it the
// payout worker picks them up.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

func New(store Store, policy access.Policy, oracle epoch.Oracle, runner tx.Runner, outbox Outbox, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	if policy == nil {
		return nil, errors.New("access policy is required")
	}
	if oracle == nil {
		return nil, errors.New("epoch oracle is required")
	}
	if runner == nil {
		return nil, errors.New("tx runner is required")
	}
	if outbox == nil {
		return nil, errors.New("payout outbox is required")
	}
	s := &Service{store: store, policy: policy, oracle: oracle, tx: runner, outbox: outbox}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddFunds credits amount from a funder.
func (s *Service) AddFunds(ctx context.Context, funder domain.Address, amount domain.Amount) (*models.Ledger, error) {
	var out *models.Ledger
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.credit(ctx, funder, amount, "")
		return err
	})
	if err != nil {
		s.refused(ctx, funder, amount, "", err)
		return nil, err
	}
	return out, nil
}

// Receive applies a push deposit. Redelivery of the same deposit id is a
// no-op, reported by applied=false.
func (s *Service) Receive(ctx context.Context, depositID uuid.UUID, sender domain.Address, amount domain.Amount) (applied bool, err error) {
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		fresh, err := s.store.MarkDeposit(ctx, depositID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record deposit")
		}
		if !fresh {
			return nil
		}
		if _, err := s.credit(ctx, sender, amount, depositID.String()); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		s.refused(ctx, sender, amount, depositID.String(), err)
		return false, err
	}
	return applied, nil
}

func (s *Service) credit(ctx context.Context, funder domain.Address, amount domain.Amount, depositID string) (*models.Ledger, error) {
	if err := access.Require(ctx, s.policy, funder, access.RoleFunder, ErrNotFunder); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrNoFunds
	}
	period, err := s.oracle.CurrentPeriod(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read current period")
	}
	ledger, err := s.store.Load(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ledger")
	}
	ledger.Credit(amount, period, requestcontext.Now(ctx))
	if err := s.store.Save(ctx, ledger); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save ledger")
	}

	attrs := map[string]string{
		"funder": funder.Hex(),
		"amount": amount.String(),
		"period": period.String(),
	}
	if depositID != "" {
		attrs["deposit_id"] = depositID
	}
	if err := audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Action:     string(audit.EventFundsAdded),
		ActorID:    funder.Hex(),
		Subject:    "ledger",
		Attributes: attrs,
	}); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *Service) refused(ctx context.Context, sender domain.Address, amount domain.Amount, depositID string, cause error) {
	if !errors.Is(cause, ErrNotFunder) && !errors.Is(cause, ErrNoFunds) {
		return
	}
	attrs := map[string]string{"amount": amount.String()}
	if depositID != "" {
		attrs["deposit_id"] = depositID
	}
	_ = audit.LogAudit(ctx, s.logger, s.security, audit.Event{
		Action:     string(audit.EventDepositRefused),
		ActorID:    sender.Hex(),
		Subject:    "ledger",
		Reason:     dErrors.Message(cause),
		Attributes: attrs,
	})
}

// WithdrawFunds moves amount to recipient.
func (s *Service) WithdrawFunds(ctx context.Context, manager, recipient domain.Address, amount domain.Amount) (*payoutmodels.Instruction, error) {
	return s.withdraw(ctx, manager, recipient, func(*models.Ledger) domain.Amount { return amount })
}

// WithdrawAllFunds empties the ledger into recipient.
func (s *Service) WithdrawAllFunds(ctx context.Context, manager, recipient domain.Address) (*payoutmodels.Instruction, error) {
	return s.withdraw(ctx, manager, recipient, func(l *models.Ledger) domain.Amount { return l.Balance })
}

// withdraw returns a nil instruction when the amount is zero: the call
// succeeds and is audited but nothing is transferred.
func (s *Service) withdraw(
	ctx context.Context,
	manager, recipient domain.Address,
	amountOf func(*models.Ledger) domain.Amount,
) (*payoutmodels.Instruction, error) {
	var instr *payoutmodels.Instruction
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Require(ctx, s.policy, manager, access.RoleFundsManager, ErrNotFundsManager); err != nil {
			return err
		}
		if recipient.IsZero() {
			return ErrInvalidRecipient
		}
		ledger, err := s.store.Load(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ledger")
		}
		amount := amountOf(ledger)
		now := requestcontext.Now(ctx)
		if !ledger.Debit(amount, now) {
			return ErrInsufficientBalance
		}
		if err := s.store.Save(ctx, ledger); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save ledger")
		}

		attrs := map[string]string{
			"recipient": recipient.Hex(),
			"amount":    amount.String(),
		}
		if !amount.IsZero() {
			instr = payoutmodels.NewInstruction(payoutmodels.KindFundsWithdrawn, recipient, amount, now)
			if err := s.outbox.Enqueue(ctx, instr); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue payout")
			}
			attrs["payout_id"] = instr.ID.String()
		}
		return audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
			Action:     string(audit.EventFundsWithdrawn),
			ActorID:    manager.Hex(),
			Subject:    "ledger",
			Attributes: attrs,
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFundsManager) {
			_ = audit.LogAudit(ctx, s.logger, s.security, audit.Event{
				Action:     string(audit.EventAccessDenied),
				ActorID:    manager.Hex(),
				Subject:    "ledger",
				Reason:     ErrNotFundsManager.Error(),
				Attributes: map[string]string{"attempted": string(audit.EventFundsWithdrawn)},
			})
		}
		return nil, err
	}
	if instr != nil && s.dispatcher != nil {
		s.dispatcher.AfterCommit(ctx, instr.ID)
	}
	return instr, nil
}

// Debit removes amount for a quorum payout. It must run inside the caller's
// unit of work so the debit commits or rolls back with the completion.
func (s *Service) Debit(ctx context.Context, amount domain.Amount) error {
	ledger, err := s.store.Load(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ledger")
	}
	if !ledger.Debit(amount, requestcontext.Now(ctx)) {
		return ErrInsufficientBalance
	}
	if err := s.store.Save(ctx, ledger); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save ledger")
	}
	return nil
}

// State returns the ledger as currently committed, or as seen by the
// enclosing unit of work.
func (s *Service) State(ctx context.Context) (*models.Ledger, error) {
	ledger, err := s.store.Load(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ledger")
	}
	return ledger, nil
}

// LastFundedPeriod is the period of the most recent deposit.
func (s *Service) LastFundedPeriod(ctx context.Context) (domain.Period, error) {
	ledger, err := s.State(ctx)
	if err != nil {
		return 0, err
	}
	return ledger.LastFundedPeriod, nil
}
