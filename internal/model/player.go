package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Role is the authorization tag carried by a credential
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleAPI       Role = "api"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleAPI, RoleUser:
		return true
	}
	return false
}

// Identity is an already-verified caller, produced by the auth service
// and consumed read-only by the coordinator
type Identity struct {
	PlayerID PlayerID `json:"userId"`
	Role     Role     `json:"role"`
}

// IsZero returns true for the anonymous identity
func (i Identity) IsZero() bool {
	return i.PlayerID == ""
}

// Player represents a game participant
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for unregistered players
	CreatedAt   time.Time
}

// Account holds login data for a registered player.
// Stored separately so the password hash never travels with the player.
type Account struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
