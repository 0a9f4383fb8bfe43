// Package service implements the withdrawal engine: project owners open a
// request, rewards data providers each submit the amount they observed, and
// once enough of them agree the ledger pays the project's rewards recipient.
//
// Every transition runs in one unit of work. The transfer itself is handed to
// the payout dispatcher only after that unit commits.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payout/internal/access"
	"payout/internal/epoch"
	fundingmodels "payout/internal/funding/models"
	payoutmodels "payout/internal/payout/models"
	projectmodels "payout/internal/projects/models"
	settingsmodels "payout/internal/settings/models"
	"payout/internal/withdrawal/metrics"
	"payout/internal/withdrawal/models"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/sentinel"
	"payout/pkg/platform/tx"
	"payout/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=../mocks/mocks.go -package=mocks Projects Ledger Settings Outbox Dispatcher

var (
	ErrNotOwner            = dErrors.New(dErrors.CodeForbidden, "not owner")
	ErrNotProvider         = dErrors.New(dErrors.CodeForbidden, "not rewards data provider")
	ErrProjectDisabled     = dErrors.New(dErrors.CodeInvariantViolation, "project disabled")
	ErrMustWaitToWithdraw  = dErrors.New(dErrors.CodePolicyViolation, "must wait to withdraw")
	ErrNoAmountToWithdraw  = dErrors.New(dErrors.CodeInvalidInput, "no amount to withdraw")
	ErrNoWithdrawalRequest = dErrors.New(dErrors.CodeNotFound, "no withdrawal request")
	ErrAlreadyProvided     = dErrors.New(dErrors.CodeConflict, "already provided")
)

var tracer = otel.Tracer("payout/internal/withdrawal")

type Store interface {
	FindRequest(ctx context.Context, id domain.ProjectID) (*models.Request, error)
	SaveRequest(ctx context.Context, r *models.Request) error
	DeleteRequest(ctx context.Context, id domain.ProjectID) error
	ListRequests(ctx context.Context) ([]*models.Request, error)
	LoadHistory(ctx context.Context, id domain.ProjectID) (*models.History, error)
	SaveHistory(ctx context.Context, h *models.History) error
}

// Projects resolves the project a request is about.
type Projects interface {
	Get(ctx context.Context, id domain.ProjectID) (*projectmodels.Project, error)
}

// Ledger is the funding ledger as seen from inside a withdrawal unit of work.
type Ledger interface {
	State(ctx context.Context) (*fundingmodels.Ledger, error)
	Debit(ctx context.Context, amount domain.Amount) error
}

// Settings supplies the frequency limit, quorum and deviation in force.
type Settings interface {
	Current(ctx context.Context) (*settingsmodels.Settings, error)
}

type Outbox interface {
	Enqueue(ctx context.Context, instr *payoutmodels.Instruction) error
}

type Dispatcher interface {
	AfterCommit(ctx context.Context, ids ...uuid.UUID)
}

// Result is the effect of a provider submission.
type Result string

const (
	ResultCounted   Result = "counted"
	ResultReset     Result = "reset"
	ResultCompleted Result = "completed"
)

// Submission describes what a CompleteWithdrawal call did.
type Submission struct {
	Result Result
	// Request is the pending request after the submission, nil once completed.
	Request *models.Request
	// Payout is the transfer instruction of a completed withdrawal.
	Payout *payoutmodels.Instruction
	// CompletionPeriod is the period in which quorum was reached.
	CompletionPeriod domain.Period
}

type Service struct {
	store      Store
	projects   Projects
	ledger     Ledger
	settings   Settings
	policy     access.Policy
	oracle     epoch.Oracle
	tx         tx.Runner
	outbox     Outbox
	dispatcher Dispatcher
	logger     *slog.Logger
	auditor    audit.Publisher
	security   audit.Publisher
	metrics    *metrics.Metrics
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDispatcher sends completed withdrawals as soon as they commit.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

func New(
	store Store,
	projects Projects,
	ledger Ledger,
	settings Settings,
	policy access.Policy,
	oracle epoch.Oracle,
	runner tx.Runner,
	outbox Outbox,
	opts ...Option,
) (*Service, error) {
	if store == nil {
		return nil, errors.New("withdrawal store is required")
	}
	if projects == nil {
		return nil, errors.New("project registry is required")
	}
	if ledger == nil {
		return nil, errors.New("funding ledger is required")
	}
	if settings == nil {
		return nil, errors.New("settings are required")
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
	s := &Service{
		store:    store,
		projects: projects,
		ledger:   ledger,
		settings: settings,
		policy:   policy,
		oracle:   oracle,
		tx:       runner,
		outbox:   outbox,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RequestWithdrawal opens a withdrawal request for the project at the current
// period. Only the project's owner may request, the project must be active,
// and the rate policy must allow it.
func (s *Service) RequestWithdrawal(ctx context.Context, caller domain.Address, id domain.ProjectID) (*models.Request, error) {
	ctx, span := tracer.Start(ctx, "withdrawal.Request", trace.WithAttributes(
		attribute.Int64("project_id", int64(id)),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("request", time.Since(start)) }()

	var (
		out  *models.Request
		wait models.Wait
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		project, err := s.projects.Get(ctx, id)
		if err != nil {
			return err
		}
		if project.Owner != caller {
			return ErrNotOwner
		}
		if !project.IsActive() {
			return ErrProjectDisabled
		}
		cfg, err := s.settings.Current(ctx)
		if err != nil {
			return err
		}
		period, err := s.period(ctx)
		if err != nil {
			return err
		}
		ledger, err := s.ledger.State(ctx)
		if err != nil {
			return err
		}
		pending, err := s.hasRequest(ctx, id)
		if err != nil {
			return err
		}
		history, err := s.history(ctx, id)
		if err != nil {
			return err
		}

		policy := models.RatePolicy{FrequencyLimit: cfg.WithdrawalFrequencyLimit}
		if wait = policy.Check(period, ledger.Deposits, history, pending); wait != models.WaitNone {
			return ErrMustWaitToWithdraw
		}

		r := models.NewRequest(id, period, requestcontext.Now(ctx))
		if err := s.store.SaveRequest(ctx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save withdrawal request")
		}
		out = r
		return s.record(ctx, caller, audit.EventWithdrawalRequested, id, map[string]string{
			"requested_period": period.String(),
		})
	})
	if err != nil {
		fail(span, err)
		switch {
		case errors.Is(err, ErrNotOwner):
			s.metrics.IncrementRequest("denied")
			s.denied(ctx, caller, audit.EventWithdrawalRequested, id, ErrNotOwner)
		case errors.Is(err, ErrMustWaitToWithdraw):
			s.metrics.IncrementRequest("must_wait")
			if s.logger != nil {
				s.logger.InfoContext(ctx, "withdrawal request refused",
					"project_id", id.String(),
					"rule", string(wait),
				)
			}
		default:
			s.metrics.IncrementRequest("error")
		}
		return nil, err
	}
	s.metrics.IncrementRequest("created")
	span.SetAttributes(attribute.Int64("requested_period", int64(out.RequestedPeriod)))
	return out, nil
}

// CompleteWithdrawal records a provider's observed amount for the project's
// request at requestedPeriod. A disagreeing amount resets the tally and emits
// invalid_withdrawal_amount; it is not an error. When the tally reaches the
// quorum the ledger is debited, a payout to the rewards recipient is queued
// and the request is removed.
func (s *Service) CompleteWithdrawal(
	ctx context.Context,
	provider domain.Address,
	id domain.ProjectID,
	requestedPeriod domain.Period,
	amount domain.Amount,
) (*Submission, error) {
	ctx, span := tracer.Start(ctx, "withdrawal.Complete", trace.WithAttributes(
		attribute.Int64("project_id", int64(id)),
		attribute.Int64("requested_period", int64(requestedPeriod)),
		attribute.String("amount", amount.String()),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("complete", time.Since(start)) }()

	var out *Submission
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Require(ctx, s.policy, provider, access.RoleRewardsDataProvider, ErrNotProvider); err != nil {
			return err
		}
		if amount.IsZero() {
			return ErrNoAmountToWithdraw
		}
		r, err := s.store.FindRequest(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrNoWithdrawalRequest
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load withdrawal request")
		}
		if r.RequestedPeriod != requestedPeriod {
			return ErrNoWithdrawalRequest
		}
		if r.Confirmations.HasProvided(provider) {
			return ErrAlreadyProvided
		}
		cfg, err := s.settings.Current(ctx)
		if err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		established, outcome := r.Confirm(provider, amount, uint64(cfg.ConfirmationsDeviation), now)
		if outcome == models.OutcomeMismatch {
			if err := s.store.SaveRequest(ctx, r); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save withdrawal request")
			}
			out = &Submission{Result: ResultReset, Request: r}
			return s.record(ctx, provider, audit.EventInvalidWithdrawalAmount, id, map[string]string{
				"requested_period": r.RequestedPeriod.String(),
				"amount":           established.String(),
				"diff_amount":      amount.String(),
			})
		}

		if err := s.record(ctx, provider, audit.EventWithdrawalConfirmed, id, map[string]string{
			"requested_period": r.RequestedPeriod.String(),
			"amount":           amount.String(),
			"confirmations":    strconv.FormatUint(uint64(r.Confirmations.Count), 10),
		}); err != nil {
			return err
		}
		if !r.Reached(cfg.ConfirmationsRequired) {
			if err := s.store.SaveRequest(ctx, r); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save withdrawal request")
			}
			out = &Submission{Result: ResultCounted, Request: r}
			return nil
		}

		out, err = s.complete(ctx, provider, r)
		return err
	})
	if err != nil {
		fail(span, err)
		s.metrics.IncrementSubmission("rejected")
		if errors.Is(err, ErrNotProvider) {
			s.denied(ctx, provider, audit.EventWithdrawalConfirmed, id, ErrNotProvider)
		}
		return nil, err
	}

	s.metrics.IncrementSubmission(string(out.Result))
	span.SetAttributes(attribute.String("result", string(out.Result)))
	if out.Result == ResultCompleted {
		s.metrics.IncrementCompletions()
		if s.dispatcher != nil {
			s.dispatcher.AfterCommit(ctx, out.Payout.ID)
		}
	}
	return out, nil
}

// complete pays the agreed value. It runs inside the unit of work of the
// submission that reached quorum.
func (s *Service) complete(ctx context.Context, provider domain.Address, r *models.Request) (*Submission, error) {
	project, err := s.projects.Get(ctx, r.ProjectID)
	if err != nil {
		return nil, err
	}
	period, err := s.period(ctx)
	if err != nil {
		return nil, err
	}
	value := r.Confirmations.Value
	if err := s.ledger.Debit(ctx, value); err != nil {
		return nil, err
	}
	ledger, err := s.ledger.State(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	instr := payoutmodels.NewInstruction(payoutmodels.KindWithdrawal, project.RewardsRecipient, value, now)
	instr.ProjectID = r.ProjectID
	instr.Period = r.RequestedPeriod
	if err := s.outbox.Enqueue(ctx, instr); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue payout")
	}

	if err := s.store.DeleteRequest(ctx, r.ProjectID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear withdrawal request")
	}
	history, err := s.history(ctx, r.ProjectID)
	if err != nil {
		return nil, err
	}
	history.Record(period, ledger.Deposits, value, now)
	if err := s.store.SaveHistory(ctx, history); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save withdrawal history")
	}

	if err := s.record(ctx, provider, audit.EventWithdrawalCompleted, r.ProjectID, map[string]string{
		"requested_period":  r.RequestedPeriod.String(),
		"withdrawal_period": period.String(),
		"amount":            value.String(),
		"recipient":         project.RewardsRecipient.Hex(),
		"payout_id":         instr.ID.String(),
	}); err != nil {
		return nil, err
	}
	return &Submission{Result: ResultCompleted, Payout: instr, CompletionPeriod: period}, nil
}

// HasPendingWithdrawal reports whether the project has a request opened at
// period.
func (s *Service) HasPendingWithdrawal(ctx context.Context, id domain.ProjectID, period domain.Period) (bool, error) {
	r, err := s.store.FindRequest(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load withdrawal request")
	}
	return r.RequestedPeriod == period, nil
}

// PendingRequest returns the project's request with its confirmation tally.
func (s *Service) PendingRequest(ctx context.Context, id domain.ProjectID) (*models.Request, error) {
	r, err := s.store.FindRequest(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrNoWithdrawalRequest
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load withdrawal request")
	}
	return r, nil
}

func (s *Service) PendingRequests(ctx context.Context) ([]*models.Request, error) {
	list, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list withdrawal requests")
	}
	return list, nil
}

// History returns the project's last completed withdrawal.
func (s *Service) History(ctx context.Context, id domain.ProjectID) (*models.History, error) {
	return s.history(ctx, id)
}

func (s *Service) history(ctx context.Context, id domain.ProjectID) (*models.History, error) {
	h, err := s.store.LoadHistory(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load withdrawal history")
	}
	return h, nil
}

func (s *Service) hasRequest(ctx context.Context, id domain.ProjectID) (bool, error) {
	_, err := s.store.FindRequest(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load withdrawal request")
	}
	return true, nil
}

func (s *Service) period(ctx context.Context) (domain.Period, error) {
	period, err := s.oracle.CurrentPeriod(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read current period")
	}
	return period, nil
}

func (s *Service) record(ctx context.Context, actor domain.Address, event audit.AuditEvent, id domain.ProjectID, attrs map[string]string) error {
	attrs["project_id"] = id.String()
	return audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Action:     string(event),
		ActorID:    actor.Hex(),
		Subject:    "project:" + id.String(),
		Attributes: attrs,
	})
}

func (s *Service) denied(ctx context.Context, caller domain.Address, attempted audit.AuditEvent, id domain.ProjectID, reason error) {
	_ = audit.LogAudit(ctx, s.logger, s.security, audit.Event{
		Action:  string(audit.EventAccessDenied),
		ActorID: caller.Hex(),
		Subject: "project:" + id.String(),
		Reason:  dErrors.Message(reason),
		Attributes: map[string]string{
			"attempted":  string(attempted),
			"project_id": id.String(),
		},
	})
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
}
