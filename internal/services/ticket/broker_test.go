package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/brentkao/roomcoord/internal/dependencies/mocks"
	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/storage/memory"
	"github.com/brentkao/roomcoord/internal/testutil"
)

type BrokerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	broker  *Broker
	ctx     context.Context
}

func TestBrokerSuite(t *testing.T) {
	suite.Run(t, new(BrokerSuite))
}

func (s *BrokerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.broker = New(s.storage, s.clock, s.random, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()
}

var alice = model.Identity{PlayerID: "alice", Role: model.RoleUser}

func (s *BrokerSuite) TestIssueStoresTicketWithTTL() {
	s.random.QueueToken("tok-1")

	ticket, err := s.broker.Issue(s.ctx, alice)
	s.Require().NoError(err)

	s.Equal("tok-1", ticket.Token)
	s.Equal(s.clock.Now().Add(60*time.Second), ticket.ExpiresAt)
	s.Equal(1, s.storage.TicketCount())
}

func (s *BrokerSuite) TestIssueRejectsAnonymous() {
	_, err := s.broker.Issue(s.ctx, model.Identity{})
	s.ErrorIs(err, model.ErrUnauthenticated)
}

func (s *BrokerSuite) TestRedeemIsSingleUse() {
	ticket, _ := s.broker.Issue(s.ctx, alice)

	identity, err := s.broker.Redeem(s.ctx, ticket.Token)
	s.Require().NoError(err)
	s.Equal(alice, identity)

	_, err = s.broker.Redeem(s.ctx, ticket.Token)
	s.ErrorIs(err, model.ErrTicketNotFound)
}

func (s *BrokerSuite) TestRedeemAfterExpiry() {
	ticket, _ := s.broker.Issue(s.ctx, alice)

	s.clock.Advance(60 * time.Second)

	_, err := s.broker.Redeem(s.ctx, ticket.Token)
	s.ErrorIs(err, model.ErrTicketNotFound)
	s.Zero(s.storage.TicketCount())
}

func (s *BrokerSuite) TestRedeemJustBeforeExpiry() {
	ticket, _ := s.broker.Issue(s.ctx, alice)

	s.clock.Advance(59 * time.Second)

	_, err := s.broker.Redeem(s.ctx, ticket.Token)
	s.NoError(err)
}

func (s *BrokerSuite) TestRedeemUnknownAndEmpty() {
	_, err := s.broker.Redeem(s.ctx, "nope")
	s.ErrorIs(err, model.ErrTicketNotFound)

	_, err = s.broker.Redeem(s.ctx, "")
	s.ErrorIs(err, model.ErrTicketNotFound)
}

func (s *BrokerSuite) TestSweepReclaimsExpired() {
	_, _ = s.broker.Issue(s.ctx, alice)
	s.clock.Advance(30 * time.Second)
	fresh, _ := s.broker.Issue(s.ctx, model.Identity{PlayerID: "bob", Role: model.RoleUser})
	s.clock.Advance(30 * time.Second)

	removed, err := s.broker.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.broker.Redeem(s.ctx, fresh.Token)
	s.NoError(err)
}

func (s *BrokerSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	broker := New(s.storage, s.clock, s.random, testutil.NopLogger(), Config{TTL: time.Second, SweepInterval: time.Millisecond})
	_, _ = broker.Issue(ctx, alice)
	s.clock.Advance(time.Minute)

	done := make(chan struct{})
	go func() {
		broker.Run(ctx)
		close(done)
	}()

	s.Eventually(func() bool { return s.storage.TicketCount() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
