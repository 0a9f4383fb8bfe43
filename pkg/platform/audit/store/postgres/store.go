package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	audit "payout/pkg/platform/audit"
	txcontext "payout/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table inside the caller's transaction and
// relayed to Kafka by the outbox worker. The audit_events table is the
// materialized, queryable copy fed back by the consumer.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Payload is the JSON structure published to Kafka.
type Payload struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Timestamp  string            `json:"timestamp"`
	Action     string            `json:"action"`
	ActorID    string            `json:"actor_id,omitempty"`
	Subject    string            `json:"subject"`
	Reason     string            `json:"reason,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Event converts a decoded payload back into an audit event.
func (p Payload) Event() (uuid.UUID, audit.Event, error) {
	eventID, err := uuid.Parse(p.ID)
	if err != nil {
		return uuid.Nil, audit.Event{}, fmt.Errorf("parse event id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return uuid.Nil, audit.Event{}, fmt.Errorf("parse event timestamp: %w", err)
	}
	return eventID, audit.Event{
		Category:   audit.EventCategory(p.Category),
		Timestamp:  ts,
		Action:     p.Action,
		ActorID:    p.ActorID,
		Subject:    p.Subject,
		Reason:     p.Reason,
		RequestID:  p.RequestID,
		Attributes: p.Attributes,
	}, nil
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Always derive category from action - eventCategories map is the source of truth
	category := audit.AuditEvent(event.Action).Category()

	payload := Payload{
		ID:         eventID.String(),
		Category:   string(category),
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:     event.Action,
		ActorID:    event.ActorID,
		Subject:    event.Subject,
		Reason:     event.Reason,
		RequestID:  event.RequestID,
		Attributes: event.Attributes,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateID := event.Subject
	if aggregateID == "" {
		aggregateID = eventID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		aggregateID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// AppendWithID inserts an audit event into the audit_events table with a specific ID.
// Used by the Kafka consumer to materialize events for querying.
// This is idempotent - duplicate inserts are ignored via ON CONFLICT DO NOTHING.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, action, actor_id,
			subject, reason, request_id, attributes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.ActorID,
		event.Subject,
		event.Reason,
		event.RequestID,
		attrs,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns materialized events for one aggregate, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, action, actor_id, subject,
			   reason, request_id, attributes
		FROM audit_events
		WHERE subject = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// ListRecent returns the N most recent materialized events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, action, actor_id, subject,
			   reason, request_id, attributes
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category string
			attrs    []byte
			event    audit.Event
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.Action,
			&event.ActorID,
			&event.Subject,
			&event.Reason,
			&event.RequestID,
			&attrs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &event.Attributes); err != nil {
				return nil, fmt.Errorf("decode audit attributes: %w", err)
			}
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}

// OutboxEntry is an unpublished outbox row.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Category    string
	Payload     []byte
}

// FetchUnpublished returns up to limit outbox rows in insertion order.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.Category, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given outbox rows as relayed.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	query := `UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(raw), time.Now()); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
