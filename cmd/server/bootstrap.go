package main

import (
	"context"
	"fmt"

	"payout/internal/access"
	accessservice "payout/internal/access/service"
	"payout/internal/platform/config"
	settingsmodels "payout/internal/settings/models"
	settingsservice "payout/internal/settings/service"
	"payout/pkg/domain"
)

// seed grants the configured roles and stores the deployment settings. Both
// are no-ops against an already initialised ledger.
func seed(ctx context.Context, cfg config.LedgerConfig, roles *accessservice.Service, settings *settingsservice.Service) error {
	grants, err := roleGrants(cfg)
	if err != nil {
		return err
	}
	if err := roles.Bootstrap(ctx, grants); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	oracle, err := optionalAddress(cfg.OracleAddress)
	if err != nil {
		return fmt.Errorf("oracle address: %w", err)
	}
	if _, err := settings.Initialize(ctx, settingsmodels.Settings{
		WithdrawalFrequencyLimit: cfg.WithdrawalFrequencyLimit,
		ConfirmationsRequired:    cfg.ConfirmationsRequired,
		ConfirmationsDeviation:   cfg.ConfirmationsDeviation,
		OracleAddress:            oracle,
	}); err != nil {
		return fmt.Errorf("initialize settings: %w", err)
	}
	return nil
}

func roleGrants(cfg config.LedgerConfig) (map[access.Role][]domain.Address, error) {
	raw := map[access.Role][]string{
		access.RoleFunder:              cfg.Funders,
		access.RoleFundsManager:        cfg.FundsManagers,
		access.RoleProjectsManager:     cfg.ProjectsManagers,
		access.RoleRewardsDataProvider: cfg.RewardsDataProviders,
	}
	if cfg.Admin != "" {
		raw[access.RoleAdmin] = []string{cfg.Admin}
	}

	grants := make(map[access.Role][]domain.Address, len(raw))
	for role, values := range raw {
		for _, v := range values {
			addr, err := domain.ParseAddress(v)
			if err != nil {
				return nil, fmt.Errorf("%s member %q: %w", role, v, err)
			}
			grants[role] = append(grants[role], addr)
		}
	}
	return grants, nil
}

func optionalAddress(s string) (domain.Address, error) {
	if s == "" {
		return domain.ZeroAddress, nil
	}
	return domain.ParseAddress(s)
}
