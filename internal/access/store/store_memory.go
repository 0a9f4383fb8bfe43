package store

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"

	"payout/internal/access"
	"payout/pkg/domain"
)

// InMemoryRoleStore keeps role membership in maps.
type InMemoryRoleStore struct {
	mu      sync.RWMutex
	members map[access.Role]map[domain.Address]struct{}
}

func NewInMemoryRoleStore() *InMemoryRoleStore {
	return &InMemoryRoleStore{members: make(map[access.Role]map[domain.Address]struct{})}
}

func (s *InMemoryRoleStore) Grant(_ context.Context, role access.Role, member domain.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.members[role]
	if !ok {
		set = make(map[domain.Address]struct{})
		s.members[role] = set
	}
	if _, exists := set[member]; exists {
		return false, nil
	}
	set[member] = struct{}{}
	return true, nil
}

func (s *InMemoryRoleStore) Revoke(_ context.Context, role access.Role, member domain.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.members[role]
	if _, exists := set[member]; !exists {
		return false, nil
	}
	delete(set, member)
	return true, nil
}

func (s *InMemoryRoleStore) Has(_ context.Context, role access.Role, member domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[role][member]
	return ok, nil
}

// Members returns the role holders ordered by address bytes.
func (s *InMemoryRoleStore) Members(_ context.Context, role access.Role) ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Collect(maps.Keys(s.members[role]))
	slices.SortFunc(out, func(a, b domain.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return out, nil
}

// Snapshot implements ledger.Participant.
func (s *InMemoryRoleStore) Snapshot() func() {
	s.mu.RLock()
	saved := make(map[access.Role]map[domain.Address]struct{}, len(s.members))
	for role, set := range s.members {
		saved[role] = maps.Clone(set)
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.members = saved
	}
}
