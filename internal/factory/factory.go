package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/brentkao/roomcoord/internal/api"
	"github.com/brentkao/roomcoord/internal/config"
	"github.com/brentkao/roomcoord/internal/dependencies/clock"
	"github.com/brentkao/roomcoord/internal/dependencies/random"
	"github.com/brentkao/roomcoord/internal/protocol"
	"github.com/brentkao/roomcoord/internal/realtime"
	"github.com/brentkao/roomcoord/internal/services/auth"
	"github.com/brentkao/roomcoord/internal/services/game"
	"github.com/brentkao/roomcoord/internal/services/room"
	"github.com/brentkao/roomcoord/internal/services/ticket"
	"github.com/brentkao/roomcoord/internal/storage"
	"github.com/brentkao/roomcoord/internal/storage/memory"
	redisstorage "github.com/brentkao/roomcoord/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage
	Logger  *slog.Logger

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService  *auth.Service
	TicketBroker *ticket.Broker
	Engine       *game.Engine
	RoomStore    *room.Store

	// Realtime
	Registry   *realtime.Registry
	Dispatcher *realtime.Dispatcher
	Endpoint   *realtime.Endpoint

	closers []io.Closer
}

// New creates an application from a validated configuration. A nil logger
// discards output.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var (
		store   storage.Storage
		closers []io.Closer
	)
	switch cfg.Storage.Type {
	case "", config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		redisStore, err := redisstorage.New(cfg.Storage.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis storage: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Storage.Type)
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	app.closers = closers
	logger.Info("application wired",
		slog.String("storage", cfg.Storage.Type),
		slog.Int("board_size", app.Engine.BoardSize()),
	)
	return app, nil
}

// newWithDependencies wires an App around the given dependencies
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg config.Config, logger *slog.Logger) *App {
	authService := auth.New(store, clk, cfg.Auth)
	broker := ticket.New(store, clk, rnd, logger, cfg.Tickets)
	engine := game.New(cfg.Game, nil, logger)
	rooms := room.New(engine, rnd, logger)
	registry := realtime.NewRegistry(logger)
	dispatcher := realtime.NewDispatcher(rooms, registry, protocol.NewParser(engine.BoardSize()), logger)
	endpoint := realtime.NewEndpoint(dispatcher, broker, cfg.WebSocket, logger)

	return &App{
		Storage:      store,
		Logger:       logger,
		Clock:        clk,
		Random:       rnd,
		AuthService:  authService,
		TicketBroker: broker,
		Engine:       engine,
		RoomStore:    rooms,
		Registry:     registry,
		Dispatcher:   dispatcher,
		Endpoint:     endpoint,
	}
}

// Handler returns the HTTP handler serving the API and websocket routes
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:       a.Logger,
		AuthService:  a.AuthService,
		TicketBroker: a.TicketBroker,
		Endpoint:     a.Endpoint,
		Registry:     a.Registry,
		RoomStore:    a.RoomStore,
	})
}

// Shutdown closes live connections, then releases storage
func (a *App) Shutdown(ctx context.Context) error {
	errs := []error{a.Endpoint.Shutdown(ctx)}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
