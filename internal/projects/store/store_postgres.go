package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"payout/internal/projects/models"
	"payout/pkg/domain"
	"payout/pkg/platform/sentinel"
	txcontext "payout/pkg/platform/tx"
)

// PostgresProjectStore persists projects, their contracts and the project id
// counter. The counter lives in ledger_counters so a rolled back add does not
// consume an id and a removed project's id is never handed out again.
type PostgresProjectStore struct {
	db *sql.DB
}

func NewPostgresProjectStore(db *sql.DB) *PostgresProjectStore {
	return &PostgresProjectStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresProjectStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresProjectStore) NextID(ctx context.Context) (domain.ProjectID, error) {
	var id domain.ProjectID
	err := s.execer(ctx).QueryRowContext(ctx, `
		INSERT INTO ledger_counters (name, value) VALUES ('project_id', 1)
		ON CONFLICT (name) DO UPDATE SET value = ledger_counters.value + 1
		RETURNING value
	`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next project id: %w", err)
	}
	return id, nil
}

func (s *PostgresProjectStore) Create(ctx context.Context, p *models.Project) error {
	if err := s.checkContracts(ctx, p.ID, p.Contracts); err != nil {
		return err
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO projects (
			id, owner, rewards_recipient, metadata_uri,
			active_from_period, active_to_period, suspended, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, p.ID, p.Owner, p.RewardsRecipient, p.MetadataURI,
		p.ActiveFromPeriod, p.ActiveToPeriod, p.Suspended, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("insert project: %w", err)
	} else if n == 0 {
		return sentinel.ErrConflict
	}
	return s.insertContracts(ctx, p.ID, p.Contracts)
}

func (s *PostgresProjectStore) FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	var p models.Project
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, owner, rewards_recipient, metadata_uri,
		       active_from_period, active_to_period, suspended, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Owner, &p.RewardsRecipient, &p.MetadataURI,
		&p.ActiveFromPeriod, &p.ActiveToPeriod, &p.Suspended, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	contracts, err := s.contractsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Contracts = contracts
	return &p, nil
}

func (s *PostgresProjectStore) Update(ctx context.Context, p *models.Project) error {
	if err := s.checkContracts(ctx, p.ID, p.Contracts); err != nil {
		return err
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE projects SET
			owner = $2,
			rewards_recipient = $3,
			metadata_uri = $4,
			active_from_period = $5,
			active_to_period = $6,
			suspended = $7,
			updated_at = $8
		WHERE id = $1
	`, p.ID, p.Owner, p.RewardsRecipient, p.MetadataURI,
		p.ActiveFromPeriod, p.ActiveToPeriod, p.Suspended, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update project: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	if _, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM project_contracts WHERE project_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear project contracts: %w", err)
	}
	return s.insertContracts(ctx, p.ID, p.Contracts)
}

// Delete removes the project; project_contracts rows cascade.
func (s *PostgresProjectStore) Delete(ctx context.Context, id domain.ProjectID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProjectStore) ProjectIDOfContract(ctx context.Context, addr domain.Address) (domain.ProjectID, error) {
	var id domain.ProjectID
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT project_id FROM project_contracts WHERE address = $1`, addr,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("project of contract: %w", err)
	}
	return id, nil
}

func (s *PostgresProjectStore) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, owner, rewards_recipient, metadata_uri,
		       active_from_period, active_to_period, suspended, created_at, updated_at
		FROM projects
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	byID := make(map[domain.ProjectID]*models.Project)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.Owner, &p.RewardsRecipient, &p.MetadataURI,
			&p.ActiveFromPeriod, &p.ActiveToPeriod, &p.Suspended, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	contractRows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT project_id, address FROM project_contracts ORDER BY project_id, address`)
	if err != nil {
		return nil, fmt.Errorf("list project contracts: %w", err)
	}
	defer contractRows.Close()
	for contractRows.Next() {
		var (
			id   domain.ProjectID
			addr domain.Address
		)
		if err := contractRows.Scan(&id, &addr); err != nil {
			return nil, fmt.Errorf("scan project contract: %w", err)
		}
		if p, ok := byID[id]; ok {
			p.Contracts = append(p.Contracts, addr)
		}
	}
	return out, contractRows.Err()
}

func (s *PostgresProjectStore) contractsOf(ctx context.Context, id domain.ProjectID) ([]domain.Address, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT address FROM project_contracts WHERE project_id = $1 ORDER BY address`, id)
	if err != nil {
		return nil, fmt.Errorf("load project contracts: %w", err)
	}
	defer rows.Close()
	var out []domain.Address
	for rows.Next() {
		var addr domain.Address
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan project contract: %w", err)
		}
		out = append(out, addr)
	}
	return out, rows.Err()
}

func (s *PostgresProjectStore) checkContracts(ctx context.Context, id domain.ProjectID, contracts []domain.Address) error {
	if len(contracts) == 0 {
		return nil
	}
	var taken bool
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM project_contracts
			WHERE address = ANY($1) AND project_id <> $2
		)
	`, pq.Array(rawAddresses(contracts)), id).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check project contracts: %w", err)
	}
	if taken {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresProjectStore) insertContracts(ctx context.Context, id domain.ProjectID, contracts []domain.Address) error {
	if len(contracts) == 0 {
		return nil
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO project_contracts (address, project_id)
		SELECT unnest($1::bytea[]), $2
	`, pq.Array(rawAddresses(contracts)), id)
	if err != nil {
		return fmt.Errorf("insert project contracts: %w", err)
	}
	return nil
}

func rawAddresses(addrs []domain.Address) [][]byte {
	raw := make([][]byte, len(addrs))
	for i, a := range addrs {
		raw[i] = a.Bytes()
	}
	return raw
}
