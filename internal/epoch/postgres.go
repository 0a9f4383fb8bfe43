package epoch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payout/pkg/domain"
	txcontext "payout/pkg/platform/tx"
)

const counterName = "epoch"

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresOracle keeps the period in the ledger_counters row "epoch". Reads
// and writes use the unit of work in ctx when there is one, so an advance
// commits or rolls back together with its audit event.
type PostgresOracle struct {
	db *sql.DB
}

func NewPostgresOracle(db *sql.DB) *PostgresOracle {
	return &PostgresOracle{db: db}
}

func (o *PostgresOracle) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return o.db
}

// Seed raises the stored period to start. A stored period above start is
// kept, so restarting with an older START_PERIOD cannot move the ledger back.
func (o *PostgresOracle) Seed(ctx context.Context, start domain.Period) error {
	_, err := o.execer(ctx).ExecContext(ctx, `
		INSERT INTO ledger_counters (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = GREATEST(ledger_counters.value, EXCLUDED.value)
	`, counterName, int64(start))
	if err != nil {
		return fmt.Errorf("seed current period: %w", err)
	}
	return nil
}

func (o *PostgresOracle) CurrentPeriod(ctx context.Context) (domain.Period, error) {
	var v int64
	err := o.execer(ctx).QueryRowContext(ctx, `
		SELECT value FROM ledger_counters WHERE name = $1
	`, counterName).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read current period: %w", err)
	}
	return domain.Period(v), nil
}

// Advance stores `to` unless the stored period is already higher.
func (o *PostgresOracle) Advance(ctx context.Context, to domain.Period) error {
	res, err := o.execer(ctx).ExecContext(ctx, `
		INSERT INTO ledger_counters (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
		WHERE ledger_counters.value <= EXCLUDED.value
	`, counterName, int64(to))
	if err != nil {
		return fmt.Errorf("advance period: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance period: %w", err)
	}
	if n == 0 {
		return ErrPeriodRegressed
	}
	return nil
}

func (*PostgresOracle) advancesInUnitOfWork() {}
