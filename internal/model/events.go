package model

// EventType identifies the type of event
type EventType string

const (
	// Lifecycle events
	EventRoomUpdated EventType = "room_updated"
	EventRoomFull    EventType = "room_full"
	EventHostChanged EventType = "host_changed"

	// Game events
	EventNextPlayer EventType = "next_player"
	EventYourTurn   EventType = "your_turn"
	EventGameOver   EventType = "game_over"
)

// Event is a notice produced by a room mutation. Recipients is fixed at
// the moment of the mutation; delivery happens after the mutation commits.
type Event struct {
	Type       EventType
	RoomID     RoomID
	PlayerID   PlayerID // The player who triggered or is affected
	Recipients []PlayerID
	Payload    any // Type-specific data
}

// RoomUpdatedPayload carries the refreshed room detail
type RoomUpdatedPayload struct {
	Room *Room
}

// HostChangedPayload contains data for host changed events
type HostChangedPayload struct {
	OldHostID PlayerID
	NewHostID PlayerID
}

// NextPlayerPayload names whose turn it is
type NextPlayerPayload struct {
	PlayerID PlayerID
}

// GameOverPayload carries the finished room snapshot and the result.
// FinalBoard is the board as it stood when the game ended; the room itself
// no longer holds one.
type GameOverPayload struct {
	Room       *Room
	Result     GameResult
	FinalBoard *Board
}
