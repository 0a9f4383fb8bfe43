package ledger

import (
	"context"
	"database/sql"
	"time"

	dErrors "payout/pkg/domain-errors"
	txcontext "payout/pkg/platform/tx"
)

const (
	defaultTxTimeout = 5 * time.Second

	// ledgerLockKey is the pg_advisory_xact_lock key shared by every unit of
	// work, so units are applied one at a time across all replicas.
	ledgerLockKey int64 = 0x7061796f7574 // "payout"
)

// PostgresRunner runs units of work in a serialised SQL transaction. Stores
// pick the transaction up from the context via pkg/platform/tx.
type PostgresRunner struct {
	db      *sql.DB
	timeout time.Duration
}

type PostgresOption func(*PostgresRunner)

// WithTimeout bounds units that arrive without a deadline.
func WithTimeout(d time.Duration) PostgresOption {
	return func(r *PostgresRunner) {
		r.timeout = d
	}
}

func NewPostgresRunner(db *sql.DB, opts ...PostgresOption) *PostgresRunner {
	r := &PostgresRunner{db: db, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PostgresRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "acquire ledger lock")
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}
