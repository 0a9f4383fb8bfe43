package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payout/internal/settings/models"
	"payout/pkg/platform/sentinel"
	txcontext "payout/pkg/platform/tx"
)

// PostgresSettingsStore persists settings in the single-row ledger_settings table.
type PostgresSettingsStore struct {
	db *sql.DB
}

func NewPostgresSettingsStore(db *sql.DB) *PostgresSettingsStore {
	return &PostgresSettingsStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresSettingsStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresSettingsStore) Load(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT withdrawal_frequency_limit, confirmations_required, confirmations_deviation,
		       oracle_address, deployed_at, updated_at
		FROM ledger_settings
		WHERE id = 1
	`).Scan(
		&out.WithdrawalFrequencyLimit,
		&out.ConfirmationsRequired,
		&out.ConfirmationsDeviation,
		&out.OracleAddress,
		&out.DeployedAt,
		&out.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &out, nil
}

func (s *PostgresSettingsStore) Save(ctx context.Context, settings *models.Settings) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO ledger_settings (
			id, withdrawal_frequency_limit, confirmations_required, confirmations_deviation,
			oracle_address, deployed_at, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			withdrawal_frequency_limit = EXCLUDED.withdrawal_frequency_limit,
			confirmations_required = EXCLUDED.confirmations_required,
			confirmations_deviation = EXCLUDED.confirmations_deviation,
			oracle_address = EXCLUDED.oracle_address,
			updated_at = EXCLUDED.updated_at
	`,
		int64(settings.WithdrawalFrequencyLimit),
		int64(settings.ConfirmationsRequired),
		int64(settings.ConfirmationsDeviation),
		settings.OracleAddress,
		settings.DeployedAt,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
