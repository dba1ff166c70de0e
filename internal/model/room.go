package model

// RoomID uniquely identifies a room
type RoomID string

// RoomStatus represents the current phase of a room
type RoomStatus string

const (
	RoomStatusWaiting    RoomStatus = "Waiting"    // Gathering players, no game running
	RoomStatusInProgress RoomStatus = "InProgress" // Game running, board and turn populated
	RoomStatusFinished   RoomStatus = "Finished"   // Only ever observed in a game-over snapshot
)

// ValidCapacity reports whether a room may be created with n seats
func ValidCapacity(n int) bool {
	return n == 2 || n == 4
}

// Room is a bounded group of players sharing one game instance.
// Members are in join order, which is also turn order.
type Room struct {
	ID            RoomID
	HostID        PlayerID
	IsPublic      bool
	Capacity      int
	Members       []PlayerID
	Status        RoomStatus
	CurrentPlayer PlayerID // "" unless Status is InProgress
	Board         *Board   // nil unless Status is InProgress
}

// IsFull returns true when every seat is taken
func (r *Room) IsFull() bool {
	return len(r.Members) >= r.Capacity
}

// HasMember returns true if the player is seated in the room
func (r *Room) HasMember(playerID PlayerID) bool {
	return r.MemberIndex(playerID) >= 0
}

// MemberIndex returns the turn-order position of a player, or -1
func (r *Room) MemberIndex(playerID PlayerID) int {
	for i, m := range r.Members {
		if m == playerID {
			return i
		}
	}
	return -1
}

// RemoveMember drops a player from the member list, preserving order
func (r *Room) RemoveMember(playerID PlayerID) bool {
	idx := r.MemberIndex(playerID)
	if idx < 0 {
		return false
	}
	r.Members = append(r.Members[:idx], r.Members[idx+1:]...)
	return true
}

// Recipients returns a copy of the member list for fan-out
func (r *Room) Recipients() []PlayerID {
	out := make([]PlayerID, len(r.Members))
	copy(out, r.Members)
	return out
}

// Snapshot returns a deep copy of the room
func (r *Room) Snapshot() *Room {
	cp := *r
	cp.Members = r.Recipients()
	cp.Board = r.Board.Clone()
	return &cp
}

// Summary reduces the room to its public listing fields
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:       r.ID,
		HostID:   r.HostID,
		IsPublic: r.IsPublic,
		Capacity: r.Capacity,
		Members:  r.Recipients(),
		Status:   r.Status,
	}
}

// RoomSummary is a room without board or turn state
type RoomSummary struct {
	ID       RoomID
	HostID   PlayerID
	IsPublic bool
	Capacity int
	Members  []PlayerID
	Status   RoomStatus
}
