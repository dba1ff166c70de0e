package model

import "time"

// DefaultTicketTTL is how long an unredeemed ticket stays valid
const DefaultTicketTTL = 60 * time.Second

// Ticket is a single-use exchange token mapping to a verified identity
type Ticket struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the ticket is no longer redeemable at now
func (t *Ticket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
