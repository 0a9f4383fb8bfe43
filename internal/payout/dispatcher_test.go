package payout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"payout/internal/ledger"
	"payout/internal/payout/mocks"
	"payout/internal/payout/models"
	"payout/internal/payout/store"
	"payout/pkg/domain"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/audit/publishers/compliance"
	auditmemory "payout/pkg/platform/audit/store/memory"
	"payout/pkg/platform/circuit"
	"payout/pkg/testutil"
)

// Justification for unit tests: a committed instruction must be transferred
// exactly once on success, stay retryable on failure, and the breaker must
// keep request paths from waiting on a broken transferer.

type DispatcherSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	transferer *mocks.MockTransferer
	store      *store.InMemoryPayoutStore
	events     *auditmemory.InMemoryStore
	dispatcher *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.transferer = mocks.NewMockTransferer(s.ctrl)
	s.store = store.NewInMemoryPayoutStore()
	s.events = auditmemory.NewInMemoryStore()

	d, err := NewDispatcher(s.store, s.transferer, ledger.NewMemoryRunner(s.store, s.events),
		WithAuditPublisher(compliance.New(s.events)),
		WithBreaker(circuit.New("transfer", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))),
	)
	s.Require().NoError(err)
	s.dispatcher = d
}

func (s *DispatcherSuite) enqueue(amount uint64) *models.Instruction {
	instr := models.NewInstruction(models.KindWithdrawal, testutil.Addr(3), domain.NewAmount(amount), time.Now())
	instr.ProjectID = 1
	s.Require().NoError(s.store.Enqueue(s.ctx, instr))
	return instr
}

func (s *DispatcherSuite) status(instr *models.Instruction) models.Status {
	got, err := s.store.FindByID(s.ctx, instr.ID)
	s.Require().NoError(err)
	return got.Status
}

// =============================================================================
// Dispatch
// =============================================================================

func (s *DispatcherSuite) TestDispatch_Success() {
	instr := s.enqueue(5000)
	s.transferer.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got *models.Instruction) error {
			s.Equal(instr.ID, got.ID)
			s.Equal(models.StatusDispatching, got.Status)
			return nil
		})

	s.Require().NoError(s.dispatcher.Dispatch(s.ctx, instr.ID))
	s.Equal(models.StatusSent, s.status(instr))

	events, err := s.events.ListBySubject(s.ctx, "payout:"+instr.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventPayoutDispatched), events[0].Action)
	s.Equal("5000", events[0].Attributes["amount"])

	s.Run("sent instruction is not transferred again", func() {
		s.NoError(s.dispatcher.Dispatch(s.ctx, instr.ID))
	})
}

func (s *DispatcherSuite) TestDispatch_FailureKeepsInstructionPending() {
	instr := s.enqueue(10)
	s.transferer.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))

	s.Error(s.dispatcher.Dispatch(s.ctx, instr.ID))

	got, err := s.store.FindByID(s.ctx, instr.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
	s.Equal("broker unavailable", got.LastError)
	s.Equal(1, got.Attempts)
}

func (s *DispatcherSuite) TestAfterCommit_DefersWhileCircuitOpen() {
	first, second, third := s.enqueue(1), s.enqueue(2), s.enqueue(3)
	s.transferer.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(errors.New("down")).Times(2)

	s.dispatcher.AfterCommit(s.ctx, first.ID, second.ID, third.ID)

	s.Equal(models.StatusPending, s.status(third), "third is left for the worker once the circuit opens")

	s.Run("worker retry closes the circuit and drains the backlog", func() {
		s.transferer.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil).Times(3)

		sent, err := NewWorker(s.dispatcher).RetryOnce(s.ctx)
		s.Require().NoError(err)
		s.Equal(3, sent)
		s.False(s.dispatcher.breaker.IsOpen())
		for _, instr := range []*models.Instruction{first, second, third} {
			s.Equal(models.StatusSent, s.status(instr))
		}
	})
}

func (s *DispatcherSuite) TestWorker_StopsAtFirstFailure() {
	s.enqueue(1)
	s.enqueue(2)
	s.transferer.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(errors.New("down")).Times(1)

	sent, err := NewWorker(s.dispatcher).RetryOnce(s.ctx)
	s.Error(err)
	s.Equal(0, sent)
}

func (s *DispatcherSuite) TestNewDispatcher_RequiresDependencies() {
	_, err := NewDispatcher(nil, s.transferer, ledger.NewMemoryRunner())
	s.Error(err)
	_, err = NewDispatcher(s.store, nil, ledger.NewMemoryRunner())
	s.Error(err)
	_, err = NewDispatcher(s.store, s.transferer, nil)
	s.Error(err)
}
