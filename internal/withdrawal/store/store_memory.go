package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"payout/internal/withdrawal/models"
	"payout/pkg/domain"
	"payout/pkg/platform/sentinel"
)

// InMemoryWithdrawalStore holds pending requests and completion history keyed
// by project.
type InMemoryWithdrawalStore struct {
	mu       sync.RWMutex
	requests map[domain.ProjectID]*models.Request
	history  map[domain.ProjectID]models.History
}

func NewInMemoryWithdrawalStore() *InMemoryWithdrawalStore {
	return &InMemoryWithdrawalStore{
		requests: make(map[domain.ProjectID]*models.Request),
		history:  make(map[domain.ProjectID]models.History),
	}
}

func (s *InMemoryWithdrawalStore) FindRequest(_ context.Context, id domain.ProjectID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemoryWithdrawalStore) SaveRequest(_ context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ProjectID] = r.Clone()
	return nil
}

// DeleteRequest removes the project's request. Deleting a missing request is
// not an error.
func (s *InMemoryWithdrawalStore) DeleteRequest(_ context.Context, id domain.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	return nil
}

// ListRequests returns pending requests ordered by project id.
func (s *InMemoryWithdrawalStore) ListRequests(_ context.Context) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(s.requests))
	out := make([]*models.Request, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.requests[id].Clone())
	}
	return out, nil
}

// LoadHistory returns the project's history, zero valued when it was never
// paid.
func (s *InMemoryWithdrawalStore) LoadHistory(_ context.Context, id domain.ProjectID) (*models.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.history[id]
	if !ok {
		return &models.History{ProjectID: id}, nil
	}
	return &h, nil
}

func (s *InMemoryWithdrawalStore) SaveHistory(_ context.Context, h *models.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[h.ProjectID] = *h
	return nil
}

// Snapshot implements ledger.Participant.
func (s *InMemoryWithdrawalStore) Snapshot() func() {
	s.mu.RLock()
	requests := make(map[domain.ProjectID]*models.Request, len(s.requests))
	for id, r := range s.requests {
		requests[id] = r.Clone()
	}
	history := maps.Clone(s.history)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.requests = requests
		s.history = history
	}
}
