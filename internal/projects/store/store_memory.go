package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"payout/internal/projects/models"
	"payout/pkg/domain"
	"payout/pkg/platform/sentinel"
)

// InMemoryProjectStore keeps projects and the contract reverse index.
type InMemoryProjectStore struct {
	mu         sync.RWMutex
	lastID     domain.ProjectID
	projects   map[domain.ProjectID]*models.Project
	contractOf map[domain.Address]domain.ProjectID
}

func NewInMemoryProjectStore() *InMemoryProjectStore {
	return &InMemoryProjectStore{
		projects:   make(map[domain.ProjectID]*models.Project),
		contractOf: make(map[domain.Address]domain.ProjectID),
	}
}

// NextID reserves the next project id. Ids are never reused, even after
// removal.
func (s *InMemoryProjectStore) NextID(_ context.Context) (domain.ProjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID, nil
}

func (s *InMemoryProjectStore) Create(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.projects[p.ID]; exists {
		return sentinel.ErrConflict
	}
	if s.claimedElsewhere(p.ID, p.Contracts) {
		return sentinel.ErrConflict
	}
	s.projects[p.ID] = p.Clone()
	for _, c := range p.Contracts {
		s.contractOf[c] = p.ID
	}
	return nil
}

func (s *InMemoryProjectStore) FindByID(_ context.Context, id domain.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// Update replaces the project, including its contract set.
func (s *InMemoryProjectStore) Update(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if s.claimedElsewhere(p.ID, p.Contracts) {
		return sentinel.ErrConflict
	}
	for _, c := range existing.Contracts {
		delete(s.contractOf, c)
	}
	for _, c := range p.Contracts {
		s.contractOf[c] = p.ID
	}
	s.projects[p.ID] = p.Clone()
	return nil
}

// Delete removes the project and releases its contracts.
func (s *InMemoryProjectStore) Delete(_ context.Context, id domain.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	for _, c := range p.Contracts {
		delete(s.contractOf, c)
	}
	delete(s.projects, id)
	return nil
}

// ProjectIDOfContract returns 0 when addr is not registered.
func (s *InMemoryProjectStore) ProjectIDOfContract(_ context.Context, addr domain.Address) (domain.ProjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contractOf[addr], nil
}

// List returns every project ordered by id.
func (s *InMemoryProjectStore) List(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, id := range slices.Sorted(maps.Keys(s.projects)) {
		out = append(out, s.projects[id].Clone())
	}
	return out, nil
}

func (s *InMemoryProjectStore) claimedElsewhere(id domain.ProjectID, contracts []domain.Address) bool {
	for _, c := range contracts {
		if owner, ok := s.contractOf[c]; ok && owner != id {
			return true
		}
	}
	return false
}

// Snapshot implements ledger.Participant.
func (s *InMemoryProjectStore) Snapshot() func() {
	s.mu.RLock()
	lastID := s.lastID
	projects := make(map[domain.ProjectID]*models.Project, len(s.projects))
	for id, p := range s.projects {
		projects[id] = p.Clone()
	}
	contractOf := maps.Clone(s.contractOf)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastID = lastID
		s.projects = projects
		s.contractOf = contractOf
	}
}
