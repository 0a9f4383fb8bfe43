package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"payout/internal/payout/models"
	"payout/pkg/platform/sentinel"
	txcontext "payout/pkg/platform/tx"
)

// PostgresPayoutStore persists payout instructions in the payouts table.
type PostgresPayoutStore struct {
	db *sql.DB
}

func NewPostgresPayoutStore(db *sql.DB) *PostgresPayoutStore {
	return &PostgresPayoutStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresPayoutStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const payoutColumns = `id, kind, recipient, amount, project_id, period, status, attempts,
	last_error, created_at, claimed_at, sent_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstruction(row rowScanner) (*models.Instruction, error) {
	var (
		instr     models.Instruction
		kind      string
		status    string
		claimedAt sql.NullTime
		sentAt    sql.NullTime
	)
	if err := row.Scan(
		&instr.ID, &kind, &instr.Recipient, &instr.Amount, &instr.ProjectID, &instr.Period,
		&status, &instr.Attempts, &instr.LastError, &instr.CreatedAt, &claimedAt, &sentAt,
	); err != nil {
		return nil, err
	}
	instr.Kind = models.Kind(kind)
	instr.Status = models.Status(status)
	if claimedAt.Valid {
		instr.ClaimedAt = &claimedAt.Time
	}
	if sentAt.Valid {
		instr.SentAt = &sentAt.Time
	}
	return &instr, nil
}

func (s *PostgresPayoutStore) Enqueue(ctx context.Context, instr *models.Instruction) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO payouts (id, kind, recipient, amount, project_id, period, status, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		instr.ID, string(instr.Kind), instr.Recipient, instr.Amount, instr.ProjectID, instr.Period,
		string(instr.Status), instr.Attempts, instr.LastError, instr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue payout: %w", err)
	}
	return nil
}

func (s *PostgresPayoutStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Instruction, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id)
	instr, err := scanInstruction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payout: %w", err)
	}
	return instr, nil
}

func (s *PostgresPayoutStore) Claim(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (*models.Instruction, bool, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		UPDATE payouts
		SET status = 'dispatching', claimed_at = $2, attempts = attempts + 1
		WHERE id = $1
		  AND (status = 'pending' OR (status = 'dispatching' AND claimed_at < $3))
		RETURNING `+payoutColumns,
		id, now, staleBefore,
	)
	instr, err := scanInstruction(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return nil, false, findErr
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claim payout: %w", err)
	}
	return instr, true, nil
}

func (s *PostgresPayoutStore) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.updateOne(ctx, "mark payout sent",
		`UPDATE payouts SET status = 'sent', sent_at = $2, last_error = '' WHERE id = $1`, id, at)
}

func (s *PostgresPayoutStore) Release(ctx context.Context, id uuid.UUID, reason string) error {
	return s.updateOne(ctx, "release payout",
		`UPDATE payouts SET status = 'pending', claimed_at = NULL, last_error = $2 WHERE id = $1`, id, reason)
}

func (s *PostgresPayoutStore) updateOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.execer(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresPayoutStore) ListClaimable(ctx context.Context, staleBefore time.Time, limit int) ([]*models.Instruction, error) {
	return s.list(ctx, `
		SELECT `+payoutColumns+` FROM payouts
		WHERE status = 'pending' OR (status = 'dispatching' AND claimed_at < $1)
		ORDER BY created_at ASC
		LIMIT $2
	`, staleBefore, limit)
}

func (s *PostgresPayoutStore) ListRecent(ctx context.Context, limit int) ([]*models.Instruction, error) {
	return s.list(ctx, `SELECT `+payoutColumns+` FROM payouts ORDER BY created_at DESC LIMIT $1`, limit)
}

func (s *PostgresPayoutStore) list(ctx context.Context, query string, args ...any) ([]*models.Instruction, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var out []*models.Instruction
	for rows.Next() {
		instr, err := scanInstruction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		out = append(out, instr)
	}
	return out, rows.Err()
}
