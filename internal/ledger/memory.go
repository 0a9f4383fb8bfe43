// Package ledger provides the units of work that serialise every state
// transition of the payout ledger.
//
// One unit runs at a time. A unit either commits all of its writes or none:
// the Postgres runner wraps a transaction holding a ledger-wide advisory lock,
// the in-memory runner snapshots its participants and restores them on error.
package ledger

import (
	"context"
	"sync"

	dErrors "payout/pkg/domain-errors"
)

// Participant is an in-memory store that can roll back to a snapshot.
type Participant interface {
	// Snapshot captures the current state and returns a function restoring it.
	Snapshot() (restore func())
}

// MemoryRunner serialises units of work over in-memory stores.
type MemoryRunner struct {
	mu           sync.Mutex
	participants []Participant
}

// NewMemoryRunner creates a runner rolling back the given participants.
func NewMemoryRunner(participants ...Participant) *MemoryRunner {
	return &MemoryRunner{participants: participants}
}

// Register adds participants after construction.
func (r *MemoryRunner) Register(participants ...Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = append(r.participants, participants...)
}

// RunInTx runs fn under the ledger lock. When fn fails or panics every
// participant is restored before the lock is released.
func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	restores := make([]func(), len(r.participants))
	for i, p := range r.participants {
		restores[i] = p.Snapshot()
	}
	rollback := func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			rollback()
			panic(rec)
		}
	}()

	if err := fn(ctx); err != nil {
		rollback()
		return err
	}
	return nil
}
