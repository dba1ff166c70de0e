// Package game is the in-room game state machine: start conditions, move
// legality, turn advancement and terminal-condition detection.
//
// Engine methods operate on a *model.Room the caller has exclusive access
// to. They either return an error and leave the room untouched, or apply
// the whole transition and return the events describing it.
package game

import (
	"fmt"
	"log/slog"

	"github.com/brentkao/roomcoord/internal/model"
)

// Config holds game settings
type Config struct {
	BoardSize int `yaml:"board_size"`
	WinLength int `yaml:"win_length"`
}

// DefaultConfig returns default game configuration
func DefaultConfig() Config {
	return Config{
		BoardSize: model.DefaultBoardSize,
		WinLength: DefaultWinLength,
	}
}

// Engine runs games inside rooms
type Engine struct {
	rules     Rules
	boardSize int
	logger    *slog.Logger
}

// New creates an Engine. A nil rules uses FiveInARow with cfg.WinLength.
func New(cfg Config, rules Rules, logger *slog.Logger) *Engine {
	if cfg.BoardSize <= 0 {
		cfg.BoardSize = model.DefaultBoardSize
	}
	if rules == nil {
		rules = FiveInARow{Length: cfg.WinLength}
	}
	return &Engine{
		rules:     rules,
		boardSize: cfg.BoardSize,
		logger:    logger.With(slog.String("component", "turn_engine")),
	}
}

// BoardSize returns the dimension of boards this engine allocates
func (e *Engine) BoardSize() int {
	return e.boardSize
}

// Start begins a game. Only the host of a full, waiting room may start.
func (e *Engine) Start(room *model.Room, callerID model.PlayerID) ([]model.Event, error) {
	if !room.HasMember(callerID) {
		return nil, model.ErrNotInRoom
	}
	if room.HostID != callerID {
		return nil, model.ErrNotHost
	}
	if room.Status == model.RoomStatusInProgress {
		return nil, model.ErrGameInProgress
	}
	if !room.IsFull() {
		return nil, model.ErrRoomNotFull
	}

	room.Status = model.RoomStatusInProgress
	room.Board = model.NewBoard(e.boardSize)
	room.CurrentPlayer = room.Members[0]

	e.logger.Info("game started",
		slog.String("room_id", string(room.ID)),
		slog.Int("player_count", len(room.Members)),
	)

	return e.turnEvents(room), nil
}

// Move marks a cell for callerID and either ends the game or passes the
// turn to the next member in join order.
func (e *Engine) Move(room *model.Room, callerID model.PlayerID, pos model.Position) ([]model.Event, error) {
	idx := room.MemberIndex(callerID)
	if idx < 0 {
		return nil, model.ErrNotInRoom
	}
	if room.Status != model.RoomStatusInProgress {
		return nil, model.ErrGameNotRunning
	}
	if room.CurrentPlayer != callerID {
		return nil, model.ErrNotYourTurn
	}
	if !room.Board.IsValidPosition(pos) {
		return nil, fmt.Errorf("%w: (%d, %d)", model.ErrOutOfBounds, pos.X, pos.Y)
	}
	if !room.Board.IsEmpty(pos) {
		return nil, fmt.Errorf("%w: (%d, %d)", model.ErrInvalidMove, pos.X, pos.Y)
	}

	room.Board.Set(pos, callerID)

	result := e.rules.Evaluate(room.Board, pos)
	if result.Terminal {
		gr := model.GameResult{Reason: model.ReasonWin, Winner: result.Winner}
		if result.Draw {
			gr = model.GameResult{Reason: model.ReasonDraw}
		}
		return e.finish(room, gr, room.Recipients()), nil
	}

	room.CurrentPlayer = room.Members[(idx+1)%len(room.Members)]
	return e.turnEvents(room), nil
}

// Forfeit ends a running game because leaverID is going away. The leaver
// is still a member when this is called; they are excluded from the
// notice. Rooms without a running game are left alone.
func (e *Engine) Forfeit(room *model.Room, leaverID model.PlayerID) []model.Event {
	if room.Status != model.RoomStatusInProgress {
		return nil
	}

	var recipients []model.PlayerID
	for _, m := range room.Members {
		if m != leaverID {
			recipients = append(recipients, m)
		}
	}

	result := model.GameResult{Reason: model.ReasonForfeit, ForfeitedBy: leaverID}
	if len(recipients) == 1 {
		result.Winner = recipients[0]
	}
	return e.finish(room, result, recipients)
}

// finish publishes a Finished snapshot and resets the room for a rematch
func (e *Engine) finish(room *model.Room, result model.GameResult, recipients []model.PlayerID) []model.Event {
	finalBoard := room.Board

	room.Status = model.RoomStatusFinished
	room.Board = nil
	room.CurrentPlayer = ""
	snapshot := room.Snapshot()

	room.Status = model.RoomStatusWaiting

	e.logger.Info("game over",
		slog.String("room_id", string(room.ID)),
		slog.String("reason", string(result.Reason)),
		slog.String("winner", string(result.Winner)),
	)

	return []model.Event{{
		Type:       model.EventGameOver,
		RoomID:     room.ID,
		PlayerID:   result.Winner,
		Recipients: recipients,
		Payload: model.GameOverPayload{
			Room:       snapshot,
			Result:     result,
			FinalBoard: finalBoard,
		},
	}}
}

// turnEvents announces the current turn: room detail and next player to
// everyone, plus a direct notice to the player whose turn it is
func (e *Engine) turnEvents(room *model.Room) []model.Event {
	members := room.Recipients()
	return []model.Event{
		{
			Type:       model.EventRoomUpdated,
			RoomID:     room.ID,
			Recipients: members,
			Payload:    model.RoomUpdatedPayload{Room: room.Snapshot()},
		},
		{
			Type:       model.EventNextPlayer,
			RoomID:     room.ID,
			PlayerID:   room.CurrentPlayer,
			Recipients: members,
			Payload:    model.NextPlayerPayload{PlayerID: room.CurrentPlayer},
		},
		{
			Type:       model.EventYourTurn,
			RoomID:     room.ID,
			PlayerID:   room.CurrentPlayer,
			Recipients: []model.PlayerID{room.CurrentPlayer},
			Payload:    model.NextPlayerPayload{PlayerID: room.CurrentPlayer},
		},
	}
}
