package payout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"payout/internal/payout/models"
	"payout/pkg/domain"
)

// Publisher writes a record to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// TransferMessage is the wire format of a transfer instruction.
type TransferMessage struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	ProjectID uint64 `json:"project_id,omitempty"`
	Period    uint64 `json:"period,omitempty"`
}

// KafkaTransferer hands instructions to the custody service through a topic
// keyed by recipient. The instruction id is the idempotency key downstream.
type KafkaTransferer struct {
	publisher Publisher
	topic     string
}

func NewKafkaTransferer(publisher Publisher, topic string) *KafkaTransferer {
	return &KafkaTransferer{publisher: publisher, topic: topic}
}

func (t *KafkaTransferer) Transfer(ctx context.Context, instr *models.Instruction) error {
	body, err := json.Marshal(TransferMessage{
		ID:        instr.ID.String(),
		Kind:      string(instr.Kind),
		Recipient: instr.Recipient.Hex(),
		Amount:    instr.Amount.String(),
		ProjectID: uint64(instr.ProjectID),
		Period:    uint64(instr.Period),
	})
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}
	return t.publisher.Publish(ctx, t.topic, instr.Recipient.Bytes(), body)
}

// Recorder credits transfers to in-process balances. It backs the
// single-process mode and tests.
type Recorder struct {
	mu       sync.Mutex
	balances map[domain.Address]domain.Amount
	hook     func(ctx context.Context, instr *models.Instruction)
}

func NewRecorder() *Recorder {
	return &Recorder{balances: make(map[domain.Address]domain.Amount)}
}

// OnTransfer installs a callback run after each credit, standing in for a
// recipient that reacts to incoming funds.
func (r *Recorder) OnTransfer(hook func(ctx context.Context, instr *models.Instruction)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

func (r *Recorder) Transfer(ctx context.Context, instr *models.Instruction) error {
	r.mu.Lock()
	r.balances[instr.Recipient] = r.balances[instr.Recipient].Add(instr.Amount)
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		hook(ctx, instr)
	}
	return nil
}

// Received returns the total credited to addr.
func (r *Recorder) Received(addr domain.Address) domain.Amount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[addr]
}
