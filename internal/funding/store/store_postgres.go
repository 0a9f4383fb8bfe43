package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"payout/internal/funding/models"
	txcontext "payout/pkg/platform/tx"
)

// PostgresLedgerStore persists the single-row funding_ledger table and the
// funding_deposits idempotency set.
type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresLedgerStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresLedgerStore) Load(ctx context.Context) (*models.Ledger, error) {
	var (
		out       models.Ledger
		deposits  int64
		updatedAt sql.NullTime
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT balance, last_funded_period, deposits, updated_at
		FROM funding_ledger
		WHERE id = 1
	`).Scan(&out.Balance, &out.LastFundedPeriod, &deposits, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load funding ledger: %w", err)
	}
	out.Deposits = uint64(deposits)
	if updatedAt.Valid {
		out.UpdatedAt = updatedAt.Time
	}
	return &out, nil
}

func (s *PostgresLedgerStore) Save(ctx context.Context, ledger *models.Ledger) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO funding_ledger (id, balance, last_funded_period, deposits, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			balance = EXCLUDED.balance,
			last_funded_period = EXCLUDED.last_funded_period,
			deposits = EXCLUDED.deposits,
			updated_at = EXCLUDED.updated_at
	`, ledger.Balance, ledger.LastFundedPeriod, int64(ledger.Deposits), ledger.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save funding ledger: %w", err)
	}
	return nil
}

func (s *PostgresLedgerStore) MarkDeposit(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO funding_deposits (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, id)
	if err != nil {
		return false, fmt.Errorf("mark deposit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark deposit: %w", err)
	}
	return n == 1, nil
}
