package main

import (
	"database/sql"
	"time"

	accessservice "payout/internal/access/service"
	accessstore "payout/internal/access/store"
	"payout/internal/epoch"
	fundingservice "payout/internal/funding/service"
	fundingstore "payout/internal/funding/store"
	"payout/internal/ledger"
	"payout/internal/payout"
	payoutstore "payout/internal/payout/store"
	projectsservice "payout/internal/projects/service"
	projectstore "payout/internal/projects/store"
	settingsservice "payout/internal/settings/service"
	settingsstore "payout/internal/settings/store"
	withdrawalservice "payout/internal/withdrawal/service"
	withdrawalstore "payout/internal/withdrawal/store"
	"payout/pkg/platform/audit"
	auditmemory "payout/pkg/platform/audit/store/memory"
	auditpg "payout/pkg/platform/audit/store/postgres"
	"payout/pkg/platform/tx"
)

// storage is every store behind one unit of work.
type storage struct {
	roles       accessservice.Store
	settings    settingsservice.Store
	funding     fundingservice.Store
	projects    projectsservice.Store
	withdrawals withdrawalservice.Store
	payouts     payout.Store
	audit       audit.Store
	runner      tx.Runner
	// outbox is set only on postgres, where compliance events are relayed
	// from the outbox table.
	outbox *auditpg.Store
	// memory is true when a rollback restores snapshots; flushes of buffered
	// security events must then run inside a unit of work.
	memory bool
}

// newMemoryStorage rolls the period counter back with the stores, so a
// failed report leaves the period where it was.
func newMemoryStorage(counter *epoch.Counter) *storage {
	roles := accessstore.NewInMemoryRoleStore()
	settings := settingsstore.NewInMemorySettingsStore()
	funding := fundingstore.NewInMemoryLedgerStore()
	projects := projectstore.NewInMemoryProjectStore()
	withdrawals := withdrawalstore.NewInMemoryWithdrawalStore()
	payouts := payoutstore.NewInMemoryPayoutStore()
	events := auditmemory.NewInMemoryStore()
	return &storage{
		roles:       roles,
		settings:    settings,
		funding:     funding,
		projects:    projects,
		withdrawals: withdrawals,
		payouts:     payouts,
		audit:       events,
		runner:      ledger.NewMemoryRunner(roles, settings, funding, projects, withdrawals, payouts, events, counter),
		memory:      true,
	}
}

func newPostgresStorage(db *sql.DB, txTimeout time.Duration) *storage {
	events := auditpg.New(db)
	return &storage{
		roles:       accessstore.NewPostgresRoleStore(db),
		settings:    settingsstore.NewPostgresSettingsStore(db),
		funding:     fundingstore.NewPostgresLedgerStore(db),
		projects:    projectstore.NewPostgresProjectStore(db),
		withdrawals: withdrawalstore.NewPostgresWithdrawalStore(db),
		payouts:     payoutstore.NewPostgresPayoutStore(db),
		audit:       events,
		runner:      ledger.NewPostgresRunner(db, ledger.WithTimeout(txTimeout)),
		outbox:      events,
	}
}
