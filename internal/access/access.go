// Package access answers capability checks: does principal P hold role R?
//
// Services depend on the Policy interface only; the role store and the admin
// operations that mutate it live in the service and store subpackages.
package access

import (
	"context"

	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
)

//go:generate mockgen -source=access.go -destination=mocks/mocks.go -package=mocks Policy

// Role is a capability granted to a principal.
type Role string

const (
	RoleAdmin               Role = "admin"
	RoleFunder              Role = "funder"
	RoleFundsManager        Role = "funds_manager"
	RoleProjectsManager     Role = "projects_manager"
	RoleRewardsDataProvider Role = "rewards_data_provider"
)

var validRoles = map[Role]bool{
	RoleAdmin:               true,
	RoleFunder:              true,
	RoleFundsManager:        true,
	RoleProjectsManager:     true,
	RoleRewardsDataProvider: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleFunder, RoleFundsManager, RoleProjectsManager, RoleRewardsDataProvider}
}

// Policy is the capability check consumed by every gated operation.
type Policy interface {
	HasRole(ctx context.Context, principal domain.Address, role Role) (bool, error)
}

// Require returns denied when principal lacks role. Lookup failures are
// internal errors, never a silent denial.
func Require(ctx context.Context, p Policy, principal domain.Address, role Role, denied error) error {
	ok, err := p.HasRole(ctx, principal, role)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check role")
	}
	if !ok {
		return denied
	}
	return nil
}
