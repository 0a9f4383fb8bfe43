// Package service manages role membership and answers capability checks.
package service

import (
	"context"
	"errors"
	"log/slog"

	"payout/internal/access"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/tx"
)

var (
	ErrNotAdmin      = dErrors.New(dErrors.CodeForbidden, "not admin")
	ErrInvalidMember = dErrors.New(dErrors.CodeInvalidInput, "member address must not be zero")
)

// Store persists role membership.
type Store interface {
	Grant(ctx context.Context, role access.Role, member domain.Address) (bool, error)
	Revoke(ctx context.Context, role access.Role, member domain.Address) (bool, error)
	Has(ctx context.Context, role access.Role, member domain.Address) (bool, error)
	Members(ctx context.Context, role access.Role) ([]domain.Address, error)
}

// Service implements access.Policy on top of a role store.
type Service struct {
	store    Store
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

// WithAuditPublisher sets the fail-closed publisher for committed role changes.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithSecurityPublisher sets the publisher for refused attempts.
func WithSecurityPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.security = p
	}
}

func New(store Store, runner tx.Runner, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("role store is required")
	}
	if runner == nil {
		return nil, errors.New("tx runner is required")
	}
	s := &Service{store: store, tx: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ access.Policy = (*Service)(nil)

func (s *Service) HasRole(ctx context.Context, principal domain.Address, role access.Role) (bool, error) {
	return s.store.Has(ctx, role, principal)
}

// Grant gives member the role. Granting a role already held is a no-op.
func (s *Service) Grant(ctx context.Context, caller domain.Address, role access.Role, member domain.Address) error {
	return s.mutate(ctx, caller, role, member, audit.EventRoleGranted, s.store.Grant)
}

// Revoke removes the role from member. Revoking a role not held is a no-op.
func (s *Service) Revoke(ctx context.Context, caller domain.Address, role access.Role, member domain.Address) error {
	return s.mutate(ctx, caller, role, member, audit.EventRoleRevoked, s.store.Revoke)
}

func (s *Service) mutate(
	ctx context.Context,
	caller domain.Address,
	role access.Role,
	member domain.Address,
	event audit.AuditEvent,
	apply func(context.Context, access.Role, domain.Address) (bool, error),
) error {
	if !role.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	if member.IsZero() {
		return ErrInvalidMember
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Require(ctx, s, caller, access.RoleAdmin, ErrNotAdmin); err != nil {
			return err
		}
		changed, err := apply(ctx, role, member)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role membership")
		}
		if !changed {
			return nil
		}
		return audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
			Action:  string(event),
			ActorID: caller.Hex(),
			Subject: "role:" + string(role),
			Attributes: map[string]string{
				"role":   string(role),
				"member": member.Hex(),
			},
		})
	})
	if errors.Is(err, ErrNotAdmin) {
		s.denied(ctx, caller, role, string(event))
	}
	return err
}

func (s *Service) denied(ctx context.Context, caller domain.Address, role access.Role, attempted string) {
	_ = audit.LogAudit(ctx, s.logger, s.security, audit.Event{
		Action:  string(audit.EventAccessDenied),
		ActorID: caller.Hex(),
		Subject: "role:" + string(role),
		Reason:  ErrNotAdmin.Error(),
		Attributes: map[string]string{
			"attempted": attempted,
		},
	})
}

// Members lists the holders of role.
func (s *Service) Members(ctx context.Context, role access.Role) ([]domain.Address, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	members, err := s.store.Members(ctx, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list role members")
	}
	return members, nil
}

// Bootstrap seeds role grants at deployment without an admin check. Existing
// grants are left untouched.
func (s *Service) Bootstrap(ctx context.Context, grants map[access.Role][]domain.Address) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, role := range access.Roles() {
			for _, member := range grants[role] {
				if member.IsZero() {
					continue
				}
				added, err := s.store.Grant(ctx, role, member)
				if err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed role")
				}
				if added && s.logger != nil {
					s.logger.InfoContext(ctx, "role seeded", "role", role, "member", member.Hex())
				}
			}
		}
		return nil
	})
}
