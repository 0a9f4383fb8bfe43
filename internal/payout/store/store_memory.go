package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"payout/internal/payout/models"
	"payout/pkg/platform/sentinel"
)

// InMemoryPayoutStore keeps payout instructions in creation order.
type InMemoryPayoutStore struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]*models.Instruction
}

func NewInMemoryPayoutStore() *InMemoryPayoutStore {
	return &InMemoryPayoutStore{byID: make(map[uuid.UUID]*models.Instruction)}
}

func clone(i *models.Instruction) *models.Instruction {
	cp := *i
	if i.ClaimedAt != nil {
		t := *i.ClaimedAt
		cp.ClaimedAt = &t
	}
	if i.SentAt != nil {
		t := *i.SentAt
		cp.SentAt = &t
	}
	return &cp
}

func (s *InMemoryPayoutStore) Enqueue(_ context.Context, instr *models.Instruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[instr.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[instr.ID] = clone(instr)
	s.order = append(s.order, instr.ID)
	return nil
}

func (s *InMemoryPayoutStore) FindByID(_ context.Context, id uuid.UUID) (*models.Instruction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instr, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(instr), nil
}

// Claim marks a claimable instruction as dispatching. ok is false when
// another dispatcher holds it or it was already sent.
func (s *InMemoryPayoutStore) Claim(_ context.Context, id uuid.UUID, now, staleBefore time.Time) (*models.Instruction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instr, exists := s.byID[id]
	if !exists {
		return nil, false, sentinel.ErrNotFound
	}
	if !instr.Claimable(staleBefore) {
		return nil, false, nil
	}
	instr.Status = models.StatusDispatching
	claimedAt := now
	instr.ClaimedAt = &claimedAt
	instr.Attempts++
	return clone(instr), true, nil
}

func (s *InMemoryPayoutStore) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	instr, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	instr.Status = models.StatusSent
	sentAt := at
	instr.SentAt = &sentAt
	instr.LastError = ""
	return nil
}

// Release hands a failed instruction back for retry.
func (s *InMemoryPayoutStore) Release(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	instr, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	instr.Status = models.StatusPending
	instr.ClaimedAt = nil
	instr.LastError = reason
	return nil
}

// ListClaimable returns up to limit claimable instructions, oldest first.
func (s *InMemoryPayoutStore) ListClaimable(_ context.Context, staleBefore time.Time, limit int) ([]*models.Instruction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Instruction
	for _, id := range s.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		if instr := s.byID[id]; instr.Claimable(staleBefore) {
			out = append(out, clone(instr))
		}
	}
	return out, nil
}

// ListRecent returns up to limit instructions, newest first.
func (s *InMemoryPayoutStore) ListRecent(_ context.Context, limit int) ([]*models.Instruction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Instruction
	for _, id := range slices.Backward(s.order) {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, clone(s.byID[id]))
	}
	return out, nil
}

// Snapshot implements ledger.Participant.
func (s *InMemoryPayoutStore) Snapshot() func() {
	s.mu.RLock()
	order := slices.Clone(s.order)
	byID := make(map[uuid.UUID]*models.Instruction, len(s.byID))
	for id, instr := range s.byID {
		byID[id] = clone(instr)
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.order = order
		s.byID = byID
	}
}
