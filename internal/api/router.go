package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/brentkao/roomcoord/internal/api/handler"
	"github.com/brentkao/roomcoord/internal/api/middleware"
	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/realtime"
	"github.com/brentkao/roomcoord/internal/services/auth"
	"github.com/brentkao/roomcoord/internal/services/room"
	"github.com/brentkao/roomcoord/internal/services/ticket"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	TicketBroker *ticket.Broker
	Endpoint     *realtime.Endpoint
	Registry     *realtime.Registry
	RoomStore    *room.Store
}

// NewRouter creates the HTTP handler serving the REST API and both
// websocket endpoints
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(cfg.AuthService)
	ticketHandler := handler.NewTicketHandler(cfg.TicketBroker)
	healthHandler := handler.NewHealthHandler(cfg.Registry, cfg.RoomStore)

	authMiddleware := middleware.Auth(cfg.AuthService)
	userOnly := middleware.RequireRole(model.RoleUser)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/auth/guest", authHandler.Guest).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	me := api.PathPrefix("/auth/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", authHandler.Me).Methods(http.MethodGet)

	tickets := api.PathPrefix("/tickets").Subrouter()
	tickets.Use(authMiddleware, userOnly)
	tickets.HandleFunc("", ticketHandler.Create).Methods(http.MethodPost)

	// Ticket endpoint: identity comes from the query token, if any
	r.HandleFunc("/ws", cfg.Endpoint.ServeTicket).Methods(http.MethodGet)

	// Authenticated endpoint: rejected before upgrade without a user credential
	game := r.PathPrefix("/ws/game").Subrouter()
	game.Use(authMiddleware, userOnly)
	game.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		cfg.Endpoint.Serve(w, r, middleware.MustGetIdentity(r.Context()))
	}).Methods(http.MethodGet)

	return r
}
