package store

import (
	"context"
	"database/sql"
	"fmt"

	"payout/internal/access"
	"payout/pkg/domain"
	txcontext "payout/pkg/platform/tx"
)

// PostgresRoleStore persists role membership in role_members.
type PostgresRoleStore struct {
	db *sql.DB
}

func NewPostgresRoleStore(db *sql.DB) *PostgresRoleStore {
	return &PostgresRoleStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresRoleStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresRoleStore) Grant(ctx context.Context, role access.Role, member domain.Address) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO role_members (role, member, granted_at)
		VALUES ($1, $2, now())
		ON CONFLICT (role, member) DO NOTHING
	`, string(role), member)
	if err != nil {
		return false, fmt.Errorf("grant role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("grant role: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresRoleStore) Revoke(ctx context.Context, role access.Role, member domain.Address) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM role_members WHERE role = $1 AND member = $2`, string(role), member)
	if err != nil {
		return false, fmt.Errorf("revoke role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke role: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresRoleStore) Has(ctx context.Context, role access.Role, member domain.Address) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_members WHERE role = $1 AND member = $2)`,
		string(role), member,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}

func (s *PostgresRoleStore) Members(ctx context.Context, role access.Role) ([]domain.Address, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT member FROM role_members WHERE role = $1 ORDER BY member`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list role members: %w", err)
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan role member: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
