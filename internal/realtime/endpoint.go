package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/brentkao/roomcoord/internal/model"
)

// TicketRedeemer exchanges a ticket for the identity it was issued to
type TicketRedeemer interface {
	Redeem(ctx context.Context, token string) (model.Identity, error)
}

// EndpointConfig holds websocket accept settings
type EndpointConfig struct {
	// OriginPatterns lists extra hosts allowed to open cross-origin
	// connections, in path.Match syntax
	OriginPatterns []string `yaml:"origin_patterns"`
}

// DefaultEndpointConfig allows local development origins
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	}
}

// Endpoint upgrades HTTP requests to coordinator connections
type Endpoint struct {
	dispatcher *Dispatcher
	tickets    TicketRedeemer
	accept     *websocket.AcceptOptions
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEndpoint creates an Endpoint
func NewEndpoint(dispatcher *Dispatcher, tickets TicketRedeemer, cfg EndpointConfig, logger *slog.Logger) *Endpoint {
	ctx, cancel := context.WithCancel(context.Background())
	return &Endpoint{
		dispatcher: dispatcher,
		tickets:    tickets,
		accept:     &websocket.AcceptOptions{OriginPatterns: cfg.OriginPatterns},
		logger:     logger.With(slog.String("component", "ws_endpoint")),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// ServeTicket handles the ticket endpoint. The token query parameter is
// redeemed once; on failure the connection proceeds anonymously.
func (e *Endpoint) ServeTicket(w http.ResponseWriter, r *http.Request) {
	var identity model.Identity
	if token := r.URL.Query().Get("token"); token != "" {
		id, err := e.tickets.Redeem(r.Context(), token)
		if err != nil {
			e.logger.Info("ticket redemption failed, continuing anonymously", slog.String("error", err.Error()))
		} else {
			identity = id
		}
	}
	e.Serve(w, r, identity)
}

// Serve upgrades the request and runs the connection with identity
// attached until it closes
func (e *Endpoint) Serve(w http.ResponseWriter, r *http.Request, identity model.Identity) {
	conn, err := websocket.Accept(w, r, e.accept)
	if err != nil {
		e.logger.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}

	e.wg.Add(1)
	defer e.wg.Done()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(e.ctx, cancel)
	defer stop()

	client := NewClient(conn, identity, e.logger)
	e.dispatcher.Connect(client)
	defer e.dispatcher.Disconnect(client)

	err = client.Serve(ctx, func(ctx context.Context, frame []byte) {
		e.dispatcher.Handle(ctx, client, frame)
	})
	if err != nil {
		e.logger.Debug("connection ended with error",
			slog.String("player_id", string(identity.PlayerID)),
			slog.String("error", err.Error()),
		)
	}
}

// Shutdown closes every open connection and waits for their cleanup
func (e *Endpoint) Shutdown(ctx context.Context) error {
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
