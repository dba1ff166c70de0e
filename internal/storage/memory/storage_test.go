package memory

import (
	"context"
	"testing"
	"time"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		DisplayName: "Alice",
		CreatedAt:   time.Now(),
	}

	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(player.DisplayName, retrieved.DisplayName)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayerReturnsCopy() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice"})

	retrieved, _ := s.storage.GetPlayer(s.ctx, "player-1")
	retrieved.DisplayName = "Mallory"

	again, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", again.DisplayName)
}

// Account tests

func (s *StorageSuite) TestSaveAndGetAccountByUsername() {
	account := &model.Account{
		PlayerID:     "player-1",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	s.Require().NoError(s.storage.SaveAccount(s.ctx, account))

	retrieved, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)
	s.Equal(model.RoleUser, retrieved.Role)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccountByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Ticket tests

func (s *StorageSuite) TestTakeTicketIsSingleUse() {
	now := time.Now()
	ticket := &model.Ticket{
		Token:     "tok",
		Identity:  model.Identity{PlayerID: "player-1", Role: model.RoleUser},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Minute),
	}
	s.Require().NoError(s.storage.SaveTicket(s.ctx, ticket))

	taken, err := s.storage.TakeTicket(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(ticket.Identity, taken.Identity)

	_, err = s.storage.TakeTicket(s.ctx, "tok")
	s.ErrorIs(err, model.ErrTicketNotFound)
}

func (s *StorageSuite) TestDeleteExpiredTickets() {
	now := time.Now()
	_ = s.storage.SaveTicket(s.ctx, &model.Ticket{Token: "old", IssuedAt: now.Add(-2 * time.Minute), ExpiresAt: now.Add(-time.Minute)})
	_ = s.storage.SaveTicket(s.ctx, &model.Ticket{Token: "edge", IssuedAt: now.Add(-time.Minute), ExpiresAt: now})
	_ = s.storage.SaveTicket(s.ctx, &model.Ticket{Token: "fresh", IssuedAt: now, ExpiresAt: now.Add(time.Minute)})

	removed, err := s.storage.DeleteExpiredTickets(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(2, removed)
	s.Equal(1, s.storage.TicketCount())

	_, err = s.storage.TakeTicket(s.ctx, "fresh")
	s.NoError(err)
}
