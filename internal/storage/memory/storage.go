package memory

import (
	"context"
	"sync"
	"time"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players       map[model.PlayerID]*model.Player
	accounts      map[model.PlayerID]*model.Account
	usernameIndex map[string]model.PlayerID
	tickets       map[string]*model.Ticket
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:       make(map[model.PlayerID]*model.Player),
		accounts:      make(map[model.PlayerID]*model.Account),
		usernameIndex: make(map[string]model.PlayerID),
		tickets:       make(map[string]*model.Ticket),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *player
	s.players[player.ID] = &cp
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *account
	s.accounts[account.PlayerID] = &cp
	s.usernameIndex[account.Username] = account.PlayerID
	return nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account, ok := s.accounts[playerID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

// Ticket operations

func (s *Storage) SaveTicket(ctx context.Context, ticket *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ticket
	s.tickets[ticket.Token] = &cp
	return nil
}

func (s *Storage) TakeTicket(ctx context.Context, token string) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[token]
	if !ok {
		return nil, model.ErrTicketNotFound
	}
	delete(s.tickets, token)
	return ticket, nil
}

func (s *Storage) DeleteExpiredTickets(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, ticket := range s.tickets {
		if ticket.Expired(now) {
			delete(s.tickets, token)
			removed++
		}
	}
	return removed, nil
}

// TicketCount returns the number of stored tickets
func (s *Storage) TicketCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}
