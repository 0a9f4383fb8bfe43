package security

import (
	"sync"

	audit "payout/pkg/platform/audit"
)

// RingBuffer holds refused-attempt events awaiting a flush. It is bounded:
// once full, each new event evicts the oldest one.
type RingBuffer struct {
	mu      sync.Mutex
	slots   []audit.Event
	start   int
	size    int
	dropped int64
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &RingBuffer{slots: make([]audit.Event, capacity)}
}

func (b *RingBuffer) at(i int) int {
	return (b.start + i) % len(b.slots)
}

// Enqueue appends event and reports whether an older event was evicted.
func (b *RingBuffer) Enqueue(event audit.Event) (evicted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size == len(b.slots) {
		b.slots[b.start] = audit.Event{}
		b.start = b.at(1)
		b.size--
		b.dropped++
		evicted = true
	}
	b.slots[b.at(b.size)] = event
	b.size++
	return evicted
}

// DequeueBatch removes up to n events, oldest first.
func (b *RingBuffer) DequeueBatch(n int) []audit.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	n = min(n, b.size)
	if n <= 0 {
		return nil
	}
	out := make([]audit.Event, n)
	for i := range out {
		idx := b.at(i)
		out[i] = b.slots[idx]
		b.slots[idx] = audit.Event{}
	}
	b.start = b.at(n)
	b.size -= n
	return out
}

// Requeue puts a batch that failed to flush back in front of newer events.
// Whatever no longer fits is dropped from the batch's oldest end and counted.
func (b *RingBuffer) Requeue(batch []audit.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	free := len(b.slots) - b.size
	if over := len(batch) - free; over > 0 {
		b.dropped += int64(over)
		batch = batch[over:]
	}
	for i := len(batch) - 1; i >= 0; i-- {
		b.start = (b.start - 1 + len(b.slots)) % len(b.slots)
		b.slots[b.start] = batch[i]
		b.size++
	}
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Dropped is the running total of evicted events.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
