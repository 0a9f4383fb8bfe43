package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"payout/internal/funding/models"
)

// InMemoryLedgerStore holds the ledger row and the ids of applied push
// deposits.
type InMemoryLedgerStore struct {
	mu       sync.RWMutex
	ledger   models.Ledger
	deposits map[uuid.UUID]struct{}
}

func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{deposits: make(map[uuid.UUID]struct{})}
}

// Load returns the ledger; before the first deposit it is empty.
func (s *InMemoryLedgerStore) Load(_ context.Context) (*models.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.ledger
	return &cp, nil
}

func (s *InMemoryLedgerStore) Save(_ context.Context, ledger *models.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = *ledger
	return nil
}

// MarkDeposit records a push deposit id. It reports false when the id was
// already applied.
func (s *InMemoryLedgerStore) MarkDeposit(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.deposits[id]; seen {
		return false, nil
	}
	s.deposits[id] = struct{}{}
	return true, nil
}

// Snapshot implements ledger.Participant.
func (s *InMemoryLedgerStore) Snapshot() func() {
	s.mu.RLock()
	saved := s.ledger
	deposits := make(map[uuid.UUID]struct{}, len(s.deposits))
	for id := range s.deposits {
		deposits[id] = struct{}{}
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.ledger = saved
		s.deposits = deposits
	}
}
