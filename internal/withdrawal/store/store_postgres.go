package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"payout/internal/withdrawal/models"
	"payout/pkg/domain"
	"payout/pkg/platform/sentinel"
	txcontext "payout/pkg/platform/tx"
)

// PostgresWithdrawalStore persists withdrawal_requests with their
// confirmation providers and the per-project withdrawal_history.
type PostgresWithdrawalStore struct {
	db *sql.DB
}

func NewPostgresWithdrawalStore(db *sql.DB) *PostgresWithdrawalStore {
	return &PostgresWithdrawalStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresWithdrawalStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresWithdrawalStore) FindRequest(ctx context.Context, id domain.ProjectID) (*models.Request, error) {
	var (
		r     models.Request
		count int64
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT project_id, requested_period, confirmed_value, confirmations, created_at, updated_at
		FROM withdrawal_requests
		WHERE project_id = $1
	`, id).Scan(&r.ProjectID, &r.RequestedPeriod, &r.Confirmations.Value, &count, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find withdrawal request: %w", err)
	}
	r.Confirmations.Count = uint32(count)
	providers, err := s.providers(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Confirmations.Providers = providers
	return &r, nil
}

func (s *PostgresWithdrawalStore) providers(ctx context.Context, id domain.ProjectID) ([]domain.Address, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT provider FROM withdrawal_confirmations
		WHERE project_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list withdrawal confirmations: %w", err)
	}
	defer rows.Close()
	var out []domain.Address
	for rows.Next() {
		var addr domain.Address
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan withdrawal confirmation: %w", err)
		}
		out = append(out, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list withdrawal confirmations: %w", err)
	}
	return out, nil
}

// SaveRequest upserts the request and rewrites its provider list.
func (s *PostgresWithdrawalStore) SaveRequest(ctx context.Context, r *models.Request) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO withdrawal_requests (
			project_id, requested_period, confirmed_value, confirmations, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id) DO UPDATE SET
			requested_period = EXCLUDED.requested_period,
			confirmed_value = EXCLUDED.confirmed_value,
			confirmations = EXCLUDED.confirmations,
			updated_at = EXCLUDED.updated_at
	`, r.ProjectID, r.RequestedPeriod, r.Confirmations.Value, int64(r.Confirmations.Count), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save withdrawal request: %w", err)
	}
	if _, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM withdrawal_confirmations WHERE project_id = $1
	`, r.ProjectID); err != nil {
		return fmt.Errorf("clear withdrawal confirmations: %w", err)
	}
	if len(r.Confirmations.Providers) == 0 {
		return nil
	}
	raw := make([][]byte, len(r.Confirmations.Providers))
	for i, p := range r.Confirmations.Providers {
		raw[i] = p.Bytes()
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO withdrawal_confirmations (project_id, provider, position)
		SELECT $1, provider, position
		FROM unnest($2::bytea[]) WITH ORDINALITY AS t(provider, position)
	`, r.ProjectID, pq.Array(raw))
	if err != nil {
		return fmt.Errorf("insert withdrawal confirmations: %w", err)
	}
	return nil
}

// DeleteRequest removes the request; confirmations cascade.
func (s *PostgresWithdrawalStore) DeleteRequest(ctx context.Context, id domain.ProjectID) error {
	if _, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM withdrawal_requests WHERE project_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete withdrawal request: %w", err)
	}
	return nil
}

func (s *PostgresWithdrawalStore) ListRequests(ctx context.Context) ([]*models.Request, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT project_id FROM withdrawal_requests ORDER BY project_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}
	var ids []domain.ProjectID
	for rows.Next() {
		var id domain.ProjectID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan withdrawal request: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}

	out := make([]*models.Request, 0, len(ids))
	for _, id := range ids {
		r, err := s.FindRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *PostgresWithdrawalStore) LoadHistory(ctx context.Context, id domain.ProjectID) (*models.History, error) {
	var (
		h           = models.History{ProjectID: id}
		completions int64
		deposits    int64
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT completions, last_completion_period, deposits_at_completion, last_amount, updated_at
		FROM withdrawal_history
		WHERE project_id = $1
	`, id).Scan(&completions, &h.LastCompletionPeriod, &deposits, &h.LastAmount, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load withdrawal history: %w", err)
	}
	h.Completions = uint64(completions)
	h.DepositsAtCompletion = uint64(deposits)
	return &h, nil
}

func (s *PostgresWithdrawalStore) SaveHistory(ctx context.Context, h *models.History) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO withdrawal_history (
			project_id, completions, last_completion_period, deposits_at_completion, last_amount, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id) DO UPDATE SET
			completions = EXCLUDED.completions,
			last_completion_period = EXCLUDED.last_completion_period,
			deposits_at_completion = EXCLUDED.deposits_at_completion,
			last_amount = EXCLUDED.last_amount,
			updated_at = EXCLUDED.updated_at
	`, h.ProjectID, int64(h.Completions), h.LastCompletionPeriod, int64(h.DepositsAtCompletion), h.LastAmount, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save withdrawal history: %w", err)
	}
	return nil
}
