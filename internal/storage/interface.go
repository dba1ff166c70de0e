package storage

import (
	"context"
	"time"

	"github.com/brentkao/roomcoord/internal/model"
)

// Storage defines the interface for the data this service keeps outside
// the in-process room state: players, login accounts and exchange tickets
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// Ticket operations
	SaveTicket(ctx context.Context, ticket *model.Ticket) error
	// TakeTicket atomically loads and deletes a ticket. A missing ticket
	// returns model.ErrTicketNotFound.
	TakeTicket(ctx context.Context, token string) (*model.Ticket, error)
	// DeleteExpiredTickets removes every ticket that has expired at now
	DeleteExpiredTickets(ctx context.Context, now time.Time) (int, error)
}
