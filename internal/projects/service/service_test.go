package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"payout/internal/access"
	accessservice "payout/internal/access/service"
	accessstore "payout/internal/access/store"
	"payout/internal/epoch"
	"payout/internal/ledger"
	"payout/internal/projects/mocks"
	"payout/internal/projects/store"
	"payout/pkg/domain"
	"payout/pkg/platform/audit"
	"payout/pkg/platform/audit/publishers/compliance"
	auditmemory "payout/pkg/platform/audit/store/memory"
	"payout/pkg/testutil"
)

// Justification for unit tests: the registry decides who is paid and for
// which contracts. Uniqueness of contracts, lifecycle periods and the
// owner/manager gates are the properties covered here.

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	counter   *epoch.Counter
	projects  *store.InMemoryProjectStore
	events    *auditmemory.InMemoryStore
	canceller *mocks.MockRequestCanceller
	service   *Service
	manager   domain.Address
	owner     domain.Address
	recipient domain.Address
	contracts []domain.Address
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.counter = epoch.NewCounter(1)
	s.projects = store.NewInMemoryProjectStore()
	s.events = auditmemory.NewInMemoryStore()
	s.canceller = mocks.NewMockRequestCanceller(gomock.NewController(s.T()))
	s.manager = testutil.Addr(1)
	s.owner = testutil.Addr(2)
	s.recipient = testutil.Addr(3)
	s.contracts = []domain.Address{testutil.Addr(11), testutil.Addr(12), testutil.Addr(13)}

	roles := accessstore.NewInMemoryRoleStore()
	runner := ledger.NewMemoryRunner(roles, s.projects, s.events)
	policy, err := accessservice.New(roles, runner)
	s.Require().NoError(err)
	s.Require().NoError(policy.Bootstrap(s.ctx, map[access.Role][]domain.Address{
		access.RoleProjectsManager: {s.manager},
	}))

	svc, err := New(s.projects, policy, s.counter, runner,
		WithAuditPublisher(compliance.New(s.events)),
		WithRequestCanceller(s.canceller),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) addProject() domain.ProjectID {
	p, err := s.service.AddProject(s.ctx, s.manager, AddProjectInput{
		Owner:            s.owner,
		RewardsRecipient: s.recipient,
		MetadataURI:      "some-uri",
		Contracts:        s.contracts,
	})
	s.Require().NoError(err)
	return p.ID
}

func (s *ServiceSuite) lastEvent(id domain.ProjectID) audit.Event {
	events, err := s.events.ListBySubject(s.ctx, "project:"+id.String())
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	return events[len(events)-1]
}

// =============================================================================
// AddProject
// =============================================================================

func (s *ServiceSuite) TestAddProject() {
	s.Run("registers project and its contracts", func() {
		id := s.addProject()
		s.Equal(domain.ProjectID(1), id)

		p, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(s.owner, p.Owner)
		s.Equal(s.recipient, p.RewardsRecipient)
		s.Equal("some-uri", p.MetadataURI)
		s.Equal(domain.Period(1), p.ActiveFromPeriod)
		s.True(p.IsActive())
		for _, c := range s.contracts {
			owner, err := s.service.ProjectIDOfContract(s.ctx, c)
			s.Require().NoError(err)
			s.Equal(id, owner)
		}

		event := s.lastEvent(id)
		s.Equal(string(audit.EventProjectAdded), event.Action)
		s.Equal("1", event.Attributes["active_from_period"])
		s.Equal(s.contracts[0].Hex()+","+s.contracts[1].Hex()+","+s.contracts[2].Hex(), event.Attributes["contracts"])
	})

	s.Run("contract already registered elsewhere", func() {
		_, err := s.service.AddProject(s.ctx, s.manager, AddProjectInput{
			Owner:            testutil.Addr(4),
			RewardsRecipient: testutil.Addr(4),
			MetadataURI:      "some-uri",
			Contracts:        s.contracts[1:],
		})
		s.ErrorIs(err, ErrContractAlreadyRegistered)

		list, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.Len(list, 1)
	})

	s.Run("empty metadata uri", func() {
		_, err := s.service.AddProject(s.ctx, s.manager, AddProjectInput{
			Owner:            s.owner,
			RewardsRecipient: s.recipient,
		})
		s.ErrorIs(err, ErrEmptyMetadataURI)
	})

	s.Run("non projects manager", func() {
		_, err := s.service.AddProject(s.ctx, s.owner, AddProjectInput{
			Owner:            s.owner,
			RewardsRecipient: s.owner,
			MetadataURI:      "some-uri",
		})
		s.ErrorIs(err, ErrNotProjectsManager)
	})

	s.Run("failed adds do not consume ids", func() {
		p, err := s.service.AddProject(s.ctx, s.manager, AddProjectInput{
			Owner:            s.owner,
			RewardsRecipient: s.recipient,
			MetadataURI:      "other",
		})
		s.Require().NoError(err)
		s.Equal(domain.ProjectID(2), p.ID)
	})
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *ServiceSuite) TestSuspendAndEnable() {
	id := s.addProject()

	s.Run("active project cannot be enabled", func() {
		s.ErrorIs(s.service.EnableProject(s.ctx, s.manager, id), ErrProjectActive)
	})

	s.Run("suspend at period 50", func() {
		s.Require().NoError(s.counter.Advance(s.ctx, 50))
		s.Require().NoError(s.service.SuspendProject(s.ctx, s.manager, id))

		p, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.Period(50), p.ActiveToPeriod)
		s.False(p.IsActive())
		s.Equal("50", s.lastEvent(id).Attributes["period"])
	})

	s.Run("suspended project cannot be suspended again", func() {
		s.ErrorIs(s.service.SuspendProject(s.ctx, s.manager, id), ErrAlreadySuspended)
	})

	s.Run("enable at period 100", func() {
		s.Require().NoError(s.counter.Advance(s.ctx, 100))
		s.Require().NoError(s.service.EnableProject(s.ctx, s.manager, id))

		p, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.Period(100), p.ActiveFromPeriod)
		s.Zero(p.ActiveToPeriod)
		s.Equal(string(audit.EventProjectEnabled), s.lastEvent(id).Action)
	})

	s.Run("unknown project", func() {
		s.ErrorIs(s.service.SuspendProject(s.ctx, s.manager, 99), ErrProjectNotFound)
		s.ErrorIs(s.service.EnableProject(s.ctx, s.manager, 99), ErrProjectNotFound)
	})
}

func (s *ServiceSuite) TestRemoveProject() {
	id := s.addProject()

	s.Run("releases contracts and cancels the pending request", func() {
		s.canceller.EXPECT().CancelRequest(gomock.Any(), id).Return(nil)

		s.Require().NoError(s.service.RemoveProject(s.ctx, s.manager, id))

		_, err := s.service.Get(s.ctx, id)
		s.ErrorIs(err, ErrProjectNotFound)
		owner, err := s.service.ProjectIDOfContract(s.ctx, s.contracts[0])
		s.Require().NoError(err)
		s.True(owner.IsNil())
	})

	s.Run("released contracts can be registered again", func() {
		p, err := s.service.AddProject(s.ctx, s.manager, AddProjectInput{
			Owner:            s.owner,
			RewardsRecipient: s.recipient,
			MetadataURI:      "again",
			Contracts:        s.contracts,
		})
		s.Require().NoError(err)
		s.Equal(domain.ProjectID(2), p.ID)
	})

	s.Run("cancel failure rolls the removal back", func() {
		s.canceller.EXPECT().CancelRequest(gomock.Any(), domain.ProjectID(2)).Return(errors.New("boom"))

		s.Error(s.service.RemoveProject(s.ctx, s.manager, 2))

		_, err := s.service.Get(s.ctx, 2)
		s.NoError(err)
	})

	s.Run("unknown project", func() {
		s.ErrorIs(s.service.RemoveProject(s.ctx, s.manager, 99), ErrProjectNotFound)
	})
}

// =============================================================================
// Contracts
// =============================================================================

func (s *ServiceSuite) TestProjectContracts() {
	id := s.addProject()
	extra := testutil.Addr(20)

	s.Run("add contract", func() {
		s.Require().NoError(s.service.AddProjectContract(s.ctx, s.manager, id, extra))

		owner, err := s.service.ProjectIDOfContract(s.ctx, extra)
		s.Require().NoError(err)
		s.Equal(id, owner)
		event := s.lastEvent(id)
		s.Equal(string(audit.EventProjectContractAdded), event.Action)
		s.Equal(extra.Hex(), event.Attributes["contract"])
	})

	s.Run("add registered contract", func() {
		s.ErrorIs(s.service.AddProjectContract(s.ctx, s.manager, id, s.contracts[0]), ErrContractAlreadyRegistered)
	})

	s.Run("remove contract", func() {
		s.Require().NoError(s.service.RemoveProjectContract(s.ctx, s.manager, id, s.contracts[0]))

		owner, err := s.service.ProjectIDOfContract(s.ctx, s.contracts[0])
		s.Require().NoError(err)
		s.True(owner.IsNil())
		s.Equal(string(audit.EventProjectContractRemoved), s.lastEvent(id).Action)
	})

	s.Run("remove unregistered contract", func() {
		s.ErrorIs(s.service.RemoveProjectContract(s.ctx, s.manager, id, testutil.Addr(30)), ErrContractNotRegistered)
	})

	s.Run("set replaces the whole list", func() {
		next := []domain.Address{s.contracts[1], testutil.Addr(31)}
		s.Require().NoError(s.service.SetProjectContracts(s.ctx, s.manager, id, next))

		p, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.ElementsMatch(next, p.Contracts)
		owner, err := s.service.ProjectIDOfContract(s.ctx, extra)
		s.Require().NoError(err)
		s.True(owner.IsNil())
	})

	s.Run("set with a contract owned elsewhere", func() {
		other, err := s.service.AddProject(s.ctx, s.manager, AddProjectInput{
			Owner:            s.owner,
			RewardsRecipient: s.recipient,
			MetadataURI:      "other",
			Contracts:        []domain.Address{testutil.Addr(40)},
		})
		s.Require().NoError(err)

		err = s.service.SetProjectContracts(s.ctx, s.manager, id, []domain.Address{testutil.Addr(40)})
		s.ErrorIs(err, ErrContractAlreadyRegistered)
		owner, err := s.service.ProjectIDOfContract(s.ctx, testutil.Addr(40))
		s.Require().NoError(err)
		s.Equal(other.ID, owner)
	})

	s.Run("unknown project", func() {
		s.ErrorIs(s.service.AddProjectContract(s.ctx, s.manager, 99, testutil.Addr(50)), ErrProjectNotFound)
		s.ErrorIs(s.service.RemoveProjectContract(s.ctx, s.manager, 99, s.contracts[1]), ErrProjectNotFound)
	})
}

// =============================================================================
// Updates
// =============================================================================

func (s *ServiceSuite) TestUpdates() {
	id := s.addProject()

	s.Run("metadata uri", func() {
		s.Require().NoError(s.service.UpdateProjectMetadataURI(s.ctx, s.manager, id, "new-uri"))
		p, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("new-uri", p.MetadataURI)
		s.ErrorIs(s.service.UpdateProjectMetadataURI(s.ctx, s.manager, id, ""), ErrEmptyMetadataURI)
		s.ErrorIs(s.service.UpdateProjectMetadataURI(s.ctx, s.manager, 99, "x"), ErrProjectNotFound)
	})

	s.Run("rewards recipient by owner", func() {
		next := testutil.Addr(5)
		s.Require().NoError(s.service.UpdateProjectRewardsRecipient(s.ctx, s.owner, id, next))
		p, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(next, p.RewardsRecipient)
		s.Equal(next.Hex(), s.lastEvent(id).Attributes["recipient"])
	})

	s.Run("rewards recipient by anyone else", func() {
		s.ErrorIs(s.service.UpdateProjectRewardsRecipient(s.ctx, s.manager, id, s.manager), ErrNotProjectOwner)
		s.ErrorIs(s.service.UpdateProjectRewardsRecipient(s.ctx, s.owner, 99, s.owner), ErrProjectNotFound)
	})

	s.Run("owner", func() {
		next := testutil.Addr(6)
		s.Require().NoError(s.service.UpdateProjectOwner(s.ctx, s.manager, id, next))
		s.ErrorIs(s.service.UpdateProjectRewardsRecipient(s.ctx, s.owner, id, s.owner), ErrNotProjectOwner)
		s.Require().NoError(s.service.UpdateProjectRewardsRecipient(s.ctx, next, id, next))
	})

	s.Run("owner update requires projects manager", func() {
		s.ErrorIs(s.service.UpdateProjectOwner(s.ctx, s.owner, id, s.owner), ErrNotProjectsManager)
		s.ErrorIs(s.service.UpdateProjectOwner(s.ctx, s.manager, 99, s.owner), ErrProjectNotFound)
	})
}
