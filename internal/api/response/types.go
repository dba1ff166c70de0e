package response

import (
	"time"

	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/services/auth"
)

// Player is the public view of a player
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is returned by register, login and guest
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	Player    Player    `json:"player"`
}

// AuthResponseFromCredential converts an issued credential
func AuthResponseFromCredential(c *auth.Credential) AuthResponse {
	return AuthResponse{
		Token:     c.Token,
		ExpiresAt: c.ExpiresAt,
		Role:      string(c.Identity.Role),
		Player:    PlayerFromModel(&c.Player),
	}
}

// MeResponse describes the caller
type MeResponse struct {
	UserID string  `json:"userId"`
	Role   string  `json:"role"`
	Player *Player `json:"player,omitempty"`
}

// TicketResponse is returned by POST /tickets
type TicketResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TicketResponseFromModel converts a model.Ticket
func TicketResponseFromModel(t *model.Ticket) TicketResponse {
	return TicketResponse{
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
	}
}

// HealthResponse reports liveness and coordinator load
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}
