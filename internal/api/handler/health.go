package handler

import (
	"net/http"

	"github.com/brentkao/roomcoord/internal/api/response"
)

// Counter reports a live count
type Counter interface {
	Count() int
}

// HealthHandler reports liveness
type HealthHandler struct {
	connections Counter
	rooms       Counter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(connections, rooms Counter) *HealthHandler {
	return &HealthHandler{connections: connections, rooms: rooms}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:      "ok",
		Connections: h.connections.Count(),
		Rooms:       h.rooms.Count(),
	})
}
