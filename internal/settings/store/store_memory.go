package store

import (
	"context"
	"sync"

	"payout/internal/settings/models"
	"payout/pkg/platform/sentinel"
)

// InMemorySettingsStore holds the single settings record.
type InMemorySettingsStore struct {
	mu       sync.RWMutex
	settings *models.Settings
}

func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{}
}

// Load returns sentinel.ErrNotFound before the ledger is initialised.
func (s *InMemorySettingsStore) Load(_ context.Context) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.settings
	return &cp, nil
}

func (s *InMemorySettingsStore) Save(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *settings
	s.settings = &cp
	return nil
}

// Snapshot implements ledger.Participant.
func (s *InMemorySettingsStore) Snapshot() func() {
	s.mu.RLock()
	saved := s.settings
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.settings = saved
	}
}
