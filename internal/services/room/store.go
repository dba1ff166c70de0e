// Package room owns every room in the process: lifecycle invariants,
// matchmaking and the player to room reverse index.
//
// All state sits behind one mutex. Each operation performs its whole
// read-modify-write under that lock and returns the events it produced
// with recipients fixed at mutation time. Callers deliver those events
// after the call returns, so no network I/O ever happens under the lock.
package room

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/brentkao/roomcoord/internal/dependencies/random"
	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/services/game"
)

// Store holds rooms and routes game operations to the turn engine
type Store struct {
	engine *game.Engine
	random random.Random
	logger *slog.Logger

	mu          sync.Mutex
	rooms       map[model.RoomID]*model.Room
	order       []model.RoomID // insertion order, for stable listings
	playerRooms map[model.PlayerID]model.RoomID
}

// New creates an empty Store
func New(engine *game.Engine, random random.Random, logger *slog.Logger) *Store {
	return &Store{
		engine:      engine,
		random:      random,
		logger:      logger.With(slog.String("component", "room_store")),
		rooms:       make(map[model.RoomID]*model.Room),
		playerRooms: make(map[model.PlayerID]model.RoomID),
	}
}

// CreateRoom opens a room with hostID as its only member
func (s *Store) CreateRoom(hostID model.PlayerID, isPublic bool, capacity int) (*model.Room, error) {
	if !model.ValidCapacity(capacity) {
		return nil, model.ErrInvalidCapacity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playerRooms[hostID]; ok {
		return nil, model.ErrAlreadyInRoom
	}

	room := &model.Room{
		ID:       model.RoomID(uuid.NewString()),
		HostID:   hostID,
		IsPublic: isPublic,
		Capacity: capacity,
		Members:  []model.PlayerID{hostID},
		Status:   model.RoomStatusWaiting,
	}
	s.rooms[room.ID] = room
	s.order = append(s.order, room.ID)
	s.playerRooms[hostID] = room.ID

	s.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(hostID)),
		slog.Bool("public", isPublic),
		slog.Int("capacity", capacity),
	)

	return room.Snapshot(), nil
}

// JoinRoom seats playerID in a specific room
func (s *Store) JoinRoom(playerID model.PlayerID, roomID model.RoomID) (*model.Room, []model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playerRooms[playerID]; ok {
		return nil, nil, model.ErrAlreadyInRoom
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, model.ErrRoomNotFound
	}
	if room.IsFull() {
		return nil, nil, model.ErrRoomFull
	}

	events := s.joinLocked(room, playerID)
	return room.Snapshot(), events, nil
}

// JoinRandom seats playerID in a public room with a free seat, chosen
// uniformly among all candidates
func (s *Store) JoinRandom(playerID model.PlayerID) (*model.Room, []model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playerRooms[playerID]; ok {
		return nil, nil, model.ErrAlreadyInRoom
	}

	var candidates []*model.Room
	for _, id := range s.order {
		room := s.rooms[id]
		if room.IsPublic && !room.IsFull() {
			candidates = append(candidates, room)
		}
	}
	if len(candidates) == 0 {
		return nil, nil, model.ErrNoRoomAvailable
	}

	room := candidates[s.random.Intn(len(candidates))]
	events := s.joinLocked(room, playerID)
	return room.Snapshot(), events, nil
}

// LeaveRoom removes playerID from their room. Leaving mid-game is refused.
func (s *Store) LeaveRoom(playerID model.PlayerID) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomOfLocked(playerID)
	if err != nil {
		return nil, err
	}
	if room.Status == model.RoomStatusInProgress {
		return nil, model.ErrGameInProgress
	}

	return s.leaveLocked(room, playerID), nil
}

// Disconnect removes a player whose connection has gone away. A running
// game in their room is forfeited first so nobody waits on a dead turn.
func (s *Store) Disconnect(playerID model.PlayerID) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomOfLocked(playerID)
	if err != nil {
		return nil
	}

	events := s.engine.Forfeit(room, playerID)
	return append(events, s.leaveLocked(room, playerID)...)
}

// ListPublicRooms returns summaries of public rooms in creation order
func (s *Store) ListPublicRooms() []model.RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.RoomSummary, 0, len(s.order))
	for _, id := range s.order {
		if room := s.rooms[id]; room.IsPublic {
			out = append(out, room.Summary())
		}
	}
	return out
}

// RoomDetail returns a snapshot of the caller's room
func (s *Store) RoomDetail(playerID model.PlayerID) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomOfLocked(playerID)
	if err != nil {
		return nil, err
	}
	return room.Snapshot(), nil
}

// StartGame starts the game in the caller's room
func (s *Store) StartGame(playerID model.PlayerID) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomOfLocked(playerID)
	if err != nil {
		return nil, err
	}
	return s.engine.Start(room, playerID)
}

// MakeMove plays a move in the caller's room
func (s *Store) MakeMove(playerID model.PlayerID, pos model.Position) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomOfLocked(playerID)
	if err != nil {
		return nil, err
	}
	return s.engine.Move(room, playerID, pos)
}

// Count returns the number of open rooms
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// roomOfLocked resolves the caller's room through the reverse index
func (s *Store) roomOfLocked(playerID model.PlayerID) (*model.Room, error) {
	roomID, ok := s.playerRooms[playerID]
	if !ok {
		return nil, model.ErrNotInRoom
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Store) joinLocked(room *model.Room, playerID model.PlayerID) []model.Event {
	room.Members = append(room.Members, playerID)
	s.playerRooms[playerID] = room.ID

	s.logger.Info("player joined room",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(playerID)),
		slog.Int("members", len(room.Members)),
	)

	members := room.Recipients()
	events := []model.Event{{
		Type:       model.EventRoomUpdated,
		RoomID:     room.ID,
		PlayerID:   playerID,
		Recipients: members,
		Payload:    model.RoomUpdatedPayload{Room: room.Snapshot()},
	}}
	if room.IsFull() {
		events = append(events, model.Event{
			Type:       model.EventRoomFull,
			RoomID:     room.ID,
			PlayerID:   room.HostID,
			Recipients: members,
		})
	}
	return events
}

// leaveLocked applies the leave rules: host handoff to the earliest
// remaining member, deletion once empty
func (s *Store) leaveLocked(room *model.Room, playerID model.PlayerID) []model.Event {
	room.RemoveMember(playerID)
	delete(s.playerRooms, playerID)

	logger := s.logger.With(
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(playerID)),
	)

	if len(room.Members) == 0 {
		delete(s.rooms, room.ID)
		s.order = slices.DeleteFunc(s.order, func(id model.RoomID) bool { return id == room.ID })
		logger.Info("room deleted")
		return nil
	}

	members := room.Recipients()
	var events []model.Event

	if room.HostID == playerID {
		room.HostID = room.Members[0]
		logger.Info("host changed", slog.String("new_host_id", string(room.HostID)))
		events = append(events, model.Event{
			Type:       model.EventHostChanged,
			RoomID:     room.ID,
			PlayerID:   room.HostID,
			Recipients: members,
			Payload:    model.HostChangedPayload{OldHostID: playerID, NewHostID: room.HostID},
		})
	}

	logger.Info("player left room", slog.Int("members", len(room.Members)))
	return append(events, model.Event{
		Type:       model.EventRoomUpdated,
		RoomID:     room.ID,
		PlayerID:   playerID,
		Recipients: members,
		Payload:    model.RoomUpdatedPayload{Room: room.Snapshot()},
	})
}
