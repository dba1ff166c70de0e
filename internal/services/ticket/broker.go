// Package ticket issues and redeems single-use exchange tickets that let a
// connection without auth headers present an already-verified identity.
package ticket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brentkao/roomcoord/internal/dependencies/clock"
	"github.com/brentkao/roomcoord/internal/dependencies/random"
	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/storage"
)

// tokenBytes is the amount of randomness behind each ticket token
const tokenBytes = 32

// Config holds ticket lifetime settings
type Config struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultConfig returns default ticket configuration
func DefaultConfig() Config {
	return Config{
		TTL:           model.DefaultTicketTTL,
		SweepInterval: 10 * time.Second,
	}
}

// Broker issues and redeems tickets
type Broker struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	cfg     Config
}

// New creates a new Broker
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger, cfg Config) *Broker {
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	return &Broker{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "ticket_broker")),
		cfg:     cfg,
	}
}

// Issue mints a ticket for identity
func (b *Broker) Issue(ctx context.Context, identity model.Identity) (*model.Ticket, error) {
	if identity.IsZero() {
		return nil, model.ErrUnauthenticated
	}

	now := b.clock.Now()
	ticket := &model.Ticket{
		Token:     b.random.Token(tokenBytes),
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: now.Add(b.cfg.TTL),
	}

	if err := b.storage.SaveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	b.logger.Debug("ticket issued",
		slog.String("player_id", string(identity.PlayerID)),
		slog.Time("expires_at", ticket.ExpiresAt),
	)
	return ticket, nil
}

// Redeem consumes a ticket. The ticket is gone afterwards whether or not it
// had already expired. Missing and expired tickets both return
// model.ErrTicketNotFound.
func (b *Broker) Redeem(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, model.ErrTicketNotFound
	}

	ticket, err := b.storage.TakeTicket(ctx, token)
	if err != nil {
		return model.Identity{}, err
	}

	if ticket.Expired(b.clock.Now()) {
		return model.Identity{}, model.ErrTicketNotFound
	}
	return ticket.Identity, nil
}

// Sweep removes every expired ticket
func (b *Broker) Sweep(ctx context.Context) (int, error) {
	removed, err := b.storage.DeleteExpiredTickets(ctx, b.clock.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		b.logger.Debug("expired tickets swept", slog.Int("removed", removed))
	}
	return removed, nil
}

// Run sweeps on an interval until ctx is done
func (b *Broker) Run(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				b.logger.Error("ticket sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// TTL returns how long issued tickets stay valid
func (b *Broker) TTL() time.Duration {
	return b.cfg.TTL
}
