package realtime

import (
	"log/slog"
	"sync"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/protocol"
)

// Conn is a live connection as the registry and dispatcher see it
type Conn interface {
	// Identity is fixed for the life of the connection. Zero means anonymous.
	Identity() model.Identity
	// Send queues a frame without blocking
	Send(frame protocol.Frame) error
	// Supersede notifies the peer that a newer connection replaced it and
	// closes the connection
	Supersede()
}

// Registry tracks at most one live connection per player
type Registry struct {
	mu     sync.RWMutex
	conns  map[model.PlayerID]Conn
	logger *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[model.PlayerID]Conn),
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Register maps playerID to conn. A previous connection for the same
// player is superseded, never merged.
func (r *Registry) Register(playerID model.PlayerID, conn Conn) {
	r.mu.Lock()
	previous := r.conns[playerID]
	r.conns[playerID] = conn
	live := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("connection registered",
		slog.String("player_id", string(playerID)),
		slog.Int("live_connections", live),
	)

	if previous != nil && previous != conn {
		r.logger.Info("connection superseded", slog.String("player_id", string(playerID)))
		previous.Supersede()
	}
}

// Unregister removes the mapping only while it still points at conn, so a
// superseded connection's cleanup cannot evict its replacement. It reports
// whether anything was removed; repeated calls are harmless.
func (r *Registry) Unregister(playerID model.PlayerID, conn Conn) bool {
	r.mu.Lock()
	current, ok := r.conns[playerID]
	if !ok || current != conn {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, playerID)
	live := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("connection unregistered",
		slog.String("player_id", string(playerID)),
		slog.Int("live_connections", live),
	)
	return true
}

// Send delivers a frame to one player. Absent players are skipped silently.
func (r *Registry) Send(playerID model.PlayerID, frame protocol.Frame) {
	r.mu.RLock()
	conn, ok := r.conns[playerID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.Send(frame); err != nil {
		r.logger.Warn("send failed",
			slog.String("player_id", string(playerID)),
			slog.String("type", string(frame.Type)),
			slog.String("error", err.Error()),
		)
	}
}

// Broadcast sends frame to every listed player independently
func (r *Registry) Broadcast(playerIDs []model.PlayerID, frame protocol.Frame) {
	for _, id := range playerIDs {
		r.Send(id, frame)
	}
}

// Count returns the number of live registered connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
