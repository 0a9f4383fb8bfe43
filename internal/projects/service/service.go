// Package service implements the project registry: the beneficiaries the
// withdrawal engine pays, their controlled contracts and their
// active/suspended lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"payout/internal/access"
	"payout/internal/epoch"
	"payout/internal/projects/models"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/sentinel"
	"payout/pkg/platform/tx"
	"payout/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=../mocks/mocks.go -package=mocks RequestCanceller

var (
	ErrNotProjectsManager        = dErrors.New(dErrors.CodeForbidden, "not projects manager")
	ErrNotProjectOwner           = dErrors.New(dErrors.CodeForbidden, "not project owner")
	ErrEmptyMetadataURI          = dErrors.New(dErrors.CodeInvalidInput, "empty metadata uri")
	ErrInvalidAddress            = dErrors.New(dErrors.CodeInvalidInput, "address is required")
	ErrProjectNotFound           = dErrors.New(dErrors.CodeNotFound, "project does not exist")
	ErrContractAlreadyRegistered = dErrors.New(dErrors.CodeConflict, "contract already registered")
	ErrContractNotRegistered     = dErrors.New(dErrors.CodeNotFound, "contract not registered")
	ErrAlreadySuspended          = dErrors.New(dErrors.CodeInvariantViolation, "project suspended")
	ErrProjectActive             = dErrors.New(dErrors.CodeInvariantViolation, "project active")
)

type Store interface {
	NextID(ctx context.Context) (domain.ProjectID, error)
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id domain.ProjectID) error
	ProjectIDOfContract(ctx context.Context, addr domain.Address) (domain.ProjectID, error)
	List(ctx context.Context) ([]*models.Project, error)
}

// RequestCanceller drops a removed project's pending withdrawal request in
// the same unit of work as the removal.
type RequestCanceller interface {
	CancelRequest(ctx context.Context, id domain.ProjectID) error
}

// RequestCancellerFunc adapts a function to RequestCanceller.
type RequestCancellerFunc func(ctx context.Context, id domain.ProjectID) error

func (f RequestCancellerFunc) CancelRequest(ctx context.Context, id domain.ProjectID) error {
	return f(ctx, id)
}

type Service struct {
	store     Store
	policy    access.Policy
	oracle    epoch.Oracle
	tx        tx.Runner
	canceller RequestCanceller
	logger    *slog.Logger
	auditor   audit.Publisher
	security  audit.Publisher
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

func WithRequestCanceller(c RequestCanceller) Option {
	return func(s *Service) {
		s.canceller = c
	}
}

func New(store Store, policy access.Policy, oracle epoch.Oracle, runner tx.Runner, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("project store is required")
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
	s := &Service{store: store, policy: policy, oracle: oracle, tx: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddProjectInput carries the fields of a new project.
type AddProjectInput struct {
	Owner            domain.Address
	RewardsRecipient domain.Address
	MetadataURI      string
	Contracts        []domain.Address
}

// AddProject registers a project active from the current period.
func (s *Service) AddProject(ctx context.Context, caller domain.Address, in AddProjectInput) (*models.Project, error) {
	var out *models.Project
	err := s.managed(ctx, caller, audit.EventProjectAdded, func(ctx context.Context) error {
		if in.Owner.IsZero() || in.RewardsRecipient.IsZero() {
			return ErrInvalidAddress
		}
		if strings.TrimSpace(in.MetadataURI) == "" {
			return ErrEmptyMetadataURI
		}
		if err := s.requireUnclaimed(ctx, 0, in.Contracts); err != nil {
			return err
		}
		period, err := s.period(ctx)
		if err != nil {
			return err
		}
		id, err := s.store.NextID(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate project id")
		}
		now := requestcontext.Now(ctx)
		p := &models.Project{
			ID:               id,
			Owner:            in.Owner,
			RewardsRecipient: in.RewardsRecipient,
			MetadataURI:      in.MetadataURI,
			Contracts:        slices.Clone(in.Contracts),
			ActiveFromPeriod: period,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		models.SortAddresses(p.Contracts)
		if err := s.store.Create(ctx, p); err != nil {
			return storeErr(err, "failed to create project")
		}
		out = p
		return s.record(ctx, caller, audit.EventProjectAdded, p.ID, map[string]string{
			"owner":              p.Owner.Hex(),
			"rewards_recipient":  p.RewardsRecipient.Hex(),
			"metadata_uri":       p.MetadataURI,
			"active_from_period": period.String(),
			"contracts":          joinAddresses(in.Contracts),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SuspendProject closes the project's active window at the current period.
func (s *Service) SuspendProject(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
	return s.managed(ctx, caller, audit.EventProjectSuspended, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsActive() {
			return ErrAlreadySuspended
		}
		period, err := s.period(ctx)
		if err != nil {
			return err
		}
		p.Suspend(period, requestcontext.Now(ctx))
		if err := s.store.Update(ctx, p); err != nil {
			return storeErr(err, "failed to suspend project")
		}
		return s.record(ctx, caller, audit.EventProjectSuspended, id, map[string]string{"period": period.String()})
	})
}

// EnableProject reopens a suspended project from the current period.
func (s *Service) EnableProject(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
	return s.managed(ctx, caller, audit.EventProjectEnabled, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if p.IsActive() {
			return ErrProjectActive
		}
		period, err := s.period(ctx)
		if err != nil {
			return err
		}
		p.Enable(period, requestcontext.Now(ctx))
		if err := s.store.Update(ctx, p); err != nil {
			return storeErr(err, "failed to enable project")
		}
		return s.record(ctx, caller, audit.EventProjectEnabled, id, map[string]string{"period": period.String()})
	})
}

// RemoveProject deletes the project, releases its contracts and drops any
// pending withdrawal request.
func (s *Service) RemoveProject(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
	return s.managed(ctx, caller, audit.EventProjectRemoved, func(ctx context.Context) error {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}
		period, err := s.period(ctx)
		if err != nil {
			return err
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return storeErr(err, "failed to remove project")
		}
		if s.canceller != nil {
			if err := s.canceller.CancelRequest(ctx, id); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel pending withdrawal")
			}
		}
		return s.record(ctx, caller, audit.EventProjectRemoved, id, map[string]string{"period": period.String()})
	})
}

func (s *Service) AddProjectContract(ctx context.Context, caller domain.Address, id domain.ProjectID, contract domain.Address) error {
	return s.managed(ctx, caller, audit.EventProjectContractAdded, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireUnclaimed(ctx, 0, []domain.Address{contract}); err != nil {
			return err
		}
		p.Contracts = append(p.Contracts, contract)
		return s.saveContracts(ctx, caller, p, []domain.Address{contract}, nil)
	})
}

func (s *Service) RemoveProjectContract(ctx context.Context, caller domain.Address, id domain.ProjectID, contract domain.Address) error {
	return s.managed(ctx, caller, audit.EventProjectContractRemoved, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if !p.HasContract(contract) {
			return ErrContractNotRegistered
		}
		p.Contracts = slices.DeleteFunc(p.Contracts, func(a domain.Address) bool { return a == contract })
		return s.saveContracts(ctx, caller, p, nil, []domain.Address{contract})
	})
}

// SetProjectContracts replaces the project's contract set. Addresses already
// owned by the project stay registered without events.
func (s *Service) SetProjectContracts(ctx context.Context, caller domain.Address, id domain.ProjectID, contracts []domain.Address) error {
	return s.managed(ctx, caller, audit.EventProjectContractAdded, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireUnclaimed(ctx, id, contracts); err != nil {
			return err
		}
		var added, removed []domain.Address
		for _, c := range contracts {
			if !p.HasContract(c) {
				added = append(added, c)
			}
		}
		for _, c := range p.Contracts {
			if !slices.Contains(contracts, c) {
				removed = append(removed, c)
			}
		}
		p.Contracts = slices.Clone(contracts)
		return s.saveContracts(ctx, caller, p, added, removed)
	})
}

func (s *Service) UpdateProjectMetadataURI(ctx context.Context, caller domain.Address, id domain.ProjectID, uri string) error {
	return s.managed(ctx, caller, audit.EventProjectMetadataURIUpdated, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if strings.TrimSpace(uri) == "" {
			return ErrEmptyMetadataURI
		}
		p.MetadataURI = uri
		p.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, p); err != nil {
			return storeErr(err, "failed to update project")
		}
		return s.record(ctx, caller, audit.EventProjectMetadataURIUpdated, id, map[string]string{"metadata_uri": uri})
	})
}

func (s *Service) UpdateProjectOwner(ctx context.Context, caller domain.Address, id domain.ProjectID, owner domain.Address) error {
	return s.managed(ctx, caller, audit.EventProjectOwnerUpdated, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if owner.IsZero() {
			return ErrInvalidAddress
		}
		p.Owner = owner
		p.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, p); err != nil {
			return storeErr(err, "failed to update project")
		}
		return s.record(ctx, caller, audit.EventProjectOwnerUpdated, id, map[string]string{"owner": owner.Hex()})
	})
}

// UpdateProjectRewardsRecipient is gated to the project's current owner.
func (s *Service) UpdateProjectRewardsRecipient(ctx context.Context, caller domain.Address, id domain.ProjectID, recipient domain.Address) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if p.Owner != caller {
			return ErrNotProjectOwner
		}
		if recipient.IsZero() {
			return ErrInvalidAddress
		}
		p.RewardsRecipient = recipient
		p.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, p); err != nil {
			return storeErr(err, "failed to update project")
		}
		return s.record(ctx, caller, audit.EventProjectRewardsRecipientUpdated, id, map[string]string{"recipient": recipient.Hex()})
	})
	if errors.Is(err, ErrNotProjectOwner) {
		s.denied(ctx, caller, audit.EventProjectRewardsRecipientUpdated, ErrNotProjectOwner)
	}
	return err
}

// Get returns the project or ErrProjectNotFound.
func (s *Service) Get(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	return s.load(ctx, id)
}

// ProjectIDOfContract returns the owning project, 0 when unregistered.
func (s *Service) ProjectIDOfContract(ctx context.Context, contract domain.Address) (domain.ProjectID, error) {
	id, err := s.store.ProjectIDOfContract(ctx, contract)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up contract")
	}
	return id, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return projects, nil
}

// managed runs fn as a projects-manager gated unit of work.
func (s *Service) managed(ctx context.Context, caller domain.Address, event audit.AuditEvent, fn func(ctx context.Context) error) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Require(ctx, s.policy, caller, access.RoleProjectsManager, ErrNotProjectsManager); err != nil {
			return err
		}
		return fn(ctx)
	})
	if errors.Is(err, ErrNotProjectsManager) {
		s.denied(ctx, caller, event, ErrNotProjectsManager)
	}
	return err
}

func (s *Service) load(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	p, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return p, nil
}

func (s *Service) period(ctx context.Context) (domain.Period, error) {
	period, err := s.oracle.CurrentPeriod(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read current period")
	}
	return period, nil
}

// requireUnclaimed fails when any contract is registered to a project other
// than self, or appears twice in the list.
func (s *Service) requireUnclaimed(ctx context.Context, self domain.ProjectID, contracts []domain.Address) error {
	seen := make(map[domain.Address]struct{}, len(contracts))
	for _, c := range contracts {
		if c.IsZero() {
			return ErrInvalidAddress
		}
		if _, dup := seen[c]; dup {
			return ErrContractAlreadyRegistered
		}
		seen[c] = struct{}{}
		owner, err := s.store.ProjectIDOfContract(ctx, c)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up contract")
		}
		if !owner.IsNil() && owner != self {
			return ErrContractAlreadyRegistered
		}
	}
	return nil
}

func (s *Service) saveContracts(ctx context.Context, caller domain.Address, p *models.Project, added, removed []domain.Address) error {
	models.SortAddresses(p.Contracts)
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, p); err != nil {
		return storeErr(err, "failed to update project contracts")
	}
	for _, c := range removed {
		if err := s.record(ctx, caller, audit.EventProjectContractRemoved, p.ID, map[string]string{"contract": c.Hex()}); err != nil {
			return err
		}
	}
	for _, c := range added {
		if err := s.record(ctx, caller, audit.EventProjectContractAdded, p.ID, map[string]string{"contract": c.Hex()}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, caller domain.Address, event audit.AuditEvent, id domain.ProjectID, attrs map[string]string) error {
	attrs["project_id"] = id.String()
	return audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Action:     string(event),
		ActorID:    caller.Hex(),
		Subject:    "project:" + id.String(),
		Attributes: attrs,
	})
}

func (s *Service) denied(ctx context.Context, caller domain.Address, attempted audit.AuditEvent, reason error) {
	_ = audit.LogAudit(ctx, s.logger, s.security, audit.Event{
		Action:     string(audit.EventAccessDenied),
		ActorID:    caller.Hex(),
		Subject:    "projects",
		Reason:     dErrors.Message(reason),
		Attributes: map[string]string{"attempted": string(attempted)},
	})
}

func storeErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return ErrContractAlreadyRegistered
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return ErrProjectNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func joinAddresses(addrs []domain.Address) string {
	hex := make([]string, len(addrs))
	for i, a := range addrs {
		hex[i] = a.Hex()
	}
	return strings.Join(hex, ",")
}
