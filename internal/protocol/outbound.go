package protocol

import (
	"fmt"

	"github.com/brentkao/roomcoord/internal/model"
)

// NotificationData is the payload of a notification. Code tells clients
// which notice this is; the other fields are set per code.
type NotificationData struct {
	Msg            string         `json:"msg"`
	Code           string         `json:"code"`
	RoomID         model.RoomID   `json:"roomId,omitempty"`
	UserID         model.PlayerID `json:"userId,omitempty"`
	Role           model.Role     `json:"role,omitempty"`
	HostID         model.PlayerID `json:"hostId,omitempty"`
	PreviousHostID model.PlayerID `json:"previousHostId,omitempty"`
}

// Notification codes
const (
	NoticeConnected   = "connected"
	NoticeRoomFull    = "room-full"
	NoticeHostChanged = "host-changed"
	NoticeYourTurn    = "your-turn"
	NoticeSuperseded  = "superseded"
)

// RoomData is the full view of a room
type RoomData struct {
	Msg           string             `json:"msg"`
	RoomID        model.RoomID       `json:"roomId"`
	HostID        model.PlayerID     `json:"hostId"`
	IsPublic      bool               `json:"isPublic"`
	Capacity      int                `json:"capacity"`
	Members       []model.PlayerID   `json:"members"`
	Status        model.RoomStatus   `json:"status"`
	CurrentPlayer model.PlayerID     `json:"currentPlayer"`
	Board         [][]model.PlayerID `json:"board"`
}

// RoomSummaryData is one entry of the public room list
type RoomSummaryData struct {
	RoomID   model.RoomID     `json:"roomId"`
	HostID   model.PlayerID   `json:"hostId"`
	IsPublic bool             `json:"isPublic"`
	Capacity int              `json:"capacity"`
	Members  []model.PlayerID `json:"members"`
	Status   model.RoomStatus `json:"status"`
}

// RoomListData is the reply to public-room-list
type RoomListData struct {
	Msg   string            `json:"msg"`
	Rooms []RoomSummaryData `json:"rooms"`
}

// NextPlayerData names whose turn it is
type NextPlayerData struct {
	Msg      string         `json:"msg"`
	RoomID   model.RoomID   `json:"roomId"`
	PlayerID model.PlayerID `json:"playerId"`
}

// GameOverData reports how a game ended
type GameOverData struct {
	Msg         string               `json:"msg"`
	RoomID      model.RoomID         `json:"roomId"`
	Reason      model.GameOverReason `json:"reason"`
	Winner      model.PlayerID       `json:"winner"`
	Draw        bool                 `json:"draw"`
	ForfeitedBy model.PlayerID       `json:"forfeitedBy,omitempty"`
	Room        RoomData             `json:"room"`
	Board       [][]model.PlayerID   `json:"board"`
}

// AckData is the echo of a lifecycle request with no richer result
type AckData struct {
	Msg    string       `json:"msg"`
	RoomID model.RoomID `json:"roomId,omitempty"`
	X      *int         `json:"x,omitempty"`
	Y      *int         `json:"y,omitempty"`
}

// PongData answers a ping
type PongData struct {
	Msg       string `json:"msg"`
	Timestamp string `json:"timestamp"`
}

// NewRoomData renders a room snapshot
func NewRoomData(msg string, room *model.Room) RoomData {
	data := RoomData{
		Msg:           msg,
		RoomID:        room.ID,
		HostID:        room.HostID,
		IsPublic:      room.IsPublic,
		Capacity:      room.Capacity,
		Members:       room.Recipients(),
		Status:        room.Status,
		CurrentPlayer: room.CurrentPlayer,
	}
	if room.Board != nil {
		data.Board = room.Board.Cells
	}
	return data
}

// NewRoomListData renders the public room list
func NewRoomListData(rooms []model.RoomSummary) RoomListData {
	out := RoomListData{
		Msg:   fmt.Sprintf("%d public rooms", len(rooms)),
		Rooms: make([]RoomSummaryData, 0, len(rooms)),
	}
	for _, r := range rooms {
		out.Rooms = append(out.Rooms, RoomSummaryData{
			RoomID:   r.ID,
			HostID:   r.HostID,
			IsPublic: r.IsPublic,
			Capacity: r.Capacity,
			Members:  r.Members,
			Status:   r.Status,
		})
	}
	return out
}

// Connected is the greeting sent when a connection opens
func Connected(identity model.Identity) Frame {
	data := NotificationData{Msg: "connected anonymously", Code: NoticeConnected}
	if !identity.IsZero() {
		data.Msg = fmt.Sprintf("connected as %s", identity.PlayerID)
		data.UserID = identity.PlayerID
		data.Role = identity.Role
	}
	return Frame{Type: TypeNotification, Data: data}
}

// Superseded tells an old connection it has been replaced
func Superseded() Frame {
	return Frame{Type: TypeNotification, Data: NotificationData{
		Msg:  "connection superseded",
		Code: NoticeSuperseded,
	}}
}

// Pong answers a ping
func Pong(timestamp string) Frame {
	return Frame{Type: TypePong, Data: PongData{Msg: "pong", Timestamp: timestamp}}
}

// Reply builds the echo of a lifecycle request
func Reply(t MessageType, data any) Frame {
	return Frame{Type: t, Data: data}
}

// EventFrame renders a room event for the wire
func EventFrame(e model.Event) (Frame, bool) {
	switch e.Type {
	case model.EventRoomUpdated:
		p := e.Payload.(model.RoomUpdatedPayload)
		return Frame{Type: TypeRoomDetail, Data: NewRoomData("room updated", p.Room)}, true

	case model.EventRoomFull:
		return Frame{Type: TypeNotification, Data: NotificationData{
			Msg:    "room is full, the host can start the game",
			Code:   NoticeRoomFull,
			RoomID: e.RoomID,
			HostID: e.PlayerID,
		}}, true

	case model.EventHostChanged:
		p := e.Payload.(model.HostChangedPayload)
		return Frame{Type: TypeNotification, Data: NotificationData{
			Msg:            fmt.Sprintf("%s is now the host", p.NewHostID),
			Code:           NoticeHostChanged,
			RoomID:         e.RoomID,
			HostID:         p.NewHostID,
			PreviousHostID: p.OldHostID,
		}}, true

	case model.EventNextPlayer:
		p := e.Payload.(model.NextPlayerPayload)
		return Frame{Type: TypeNextPlayer, Data: NextPlayerData{
			Msg:      fmt.Sprintf("next player is %s", p.PlayerID),
			RoomID:   e.RoomID,
			PlayerID: p.PlayerID,
		}}, true

	case model.EventYourTurn:
		return Frame{Type: TypeNotification, Data: NotificationData{
			Msg:    "your turn",
			Code:   NoticeYourTurn,
			RoomID: e.RoomID,
			UserID: e.PlayerID,
		}}, true

	case model.EventGameOver:
		p := e.Payload.(model.GameOverPayload)
		data := GameOverData{
			Msg:         gameOverMessage(p.Result),
			RoomID:      e.RoomID,
			Reason:      p.Result.Reason,
			Winner:      p.Result.Winner,
			Draw:        p.Result.IsDraw(),
			ForfeitedBy: p.Result.ForfeitedBy,
			Room:        NewRoomData("game over", p.Room),
		}
		if p.FinalBoard != nil {
			data.Board = p.FinalBoard.Cells
		}
		return Frame{Type: TypeGameOver, Data: data}, true
	}
	return Frame{}, false
}

func gameOverMessage(r model.GameResult) string {
	switch r.Reason {
	case model.ReasonDraw:
		return "game over: draw"
	case model.ReasonForfeit:
		return fmt.Sprintf("game over: %s left the game", r.ForfeitedBy)
	default:
		return fmt.Sprintf("game over: %s wins", r.Winner)
	}
}
