package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/brentkao/roomcoord/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GuestPlayerTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
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

func (s *StorageSuite) TestGuestPlayerExpires() {
	guest := &model.Player{ID: "guest-1", DisplayName: "Guest", IsGuest: true}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, guest))

	s.Equal(time.Hour, s.mini.TTL(playerKey("guest-1")))

	s.mini.FastForward(2 * time.Hour)
	_, err := s.storage.GetPlayer(s.ctx, "guest-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestRegisteredPlayerHasNoTTL() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice"}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	s.Equal(time.Duration(0), s.mini.TTL(playerKey("player-1")))
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
	s.Equal("hash", retrieved.PasswordHash)
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
	s.Equal(time.Minute, s.mini.TTL(ticketKey("tok")))

	taken, err := s.storage.TakeTicket(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(ticket.Identity, taken.Identity)

	_, err = s.storage.TakeTicket(s.ctx, "tok")
	s.ErrorIs(err, model.ErrTicketNotFound)
}

func (s *StorageSuite) TestTicketExpiresNatively() {
	now := time.Now()
	_ = s.storage.SaveTicket(s.ctx, &model.Ticket{Token: "tok", IssuedAt: now, ExpiresAt: now.Add(time.Minute)})

	s.mini.FastForward(time.Minute)

	_, err := s.storage.TakeTicket(s.ctx, "tok")
	s.ErrorIs(err, model.ErrTicketNotFound)
}

func (s *StorageSuite) TestDeleteExpiredTicketsIsNoop() {
	removed, err := s.storage.DeleteExpiredTickets(s.ctx, time.Now())
	s.Require().NoError(err)
	s.Zero(removed)
}
