// Package protocol is the wire format spoken over coordinator connections.
//
// Every frame in either direction is an Envelope: {"type": ..., "data": ...}.
// Type is drawn from one closed set; Parser turns inbound frames into typed
// requests and the outbound constructors build the replies.
package protocol

import "encoding/json"

// MessageType tags an envelope and selects its payload schema
type MessageType string

const (
	// Lifecycle requests, echoed back with their result
	TypeCreateRoom     MessageType = "create-room"
	TypeJoinRoom       MessageType = "join-room"
	TypeJoinRandomRoom MessageType = "join-random-room"
	TypeLeaveRoom      MessageType = "leave-room"
	TypePublicRoomList MessageType = "public-room-list"
	TypeRoomDetail     MessageType = "room-detail"
	TypeStartGame      MessageType = "start-game"
	TypeGameMakeMove   MessageType = "game-make-move"
	TypePing           MessageType = "ping"

	// Server pushes
	TypeNotification MessageType = "notification"
	TypeNextPlayer   MessageType = "next-player"
	TypeGameOver     MessageType = "game-over"
	TypeError        MessageType = "error"
	TypePong         MessageType = "pong"
)

// InboundTypes lists every type a client may send, in documentation order
var InboundTypes = []MessageType{
	TypeCreateRoom,
	TypeJoinRoom,
	TypeJoinRandomRoom,
	TypeLeaveRoom,
	TypePublicRoomList,
	TypeRoomDetail,
	TypeStartGame,
	TypeGameMakeMove,
	TypePing,
}

// IsInbound reports whether clients may send t
func (t MessageType) IsInbound() bool {
	for _, in := range InboundTypes {
		if in == t {
			return true
		}
	}
	return false
}

// AllowsAnonymous reports whether a connection without an identity may send t
func (t MessageType) AllowsAnonymous() bool {
	return t == TypePing || t == TypePublicRoomList
}

// Envelope is the wire unit. Inbound frames decode into
// Envelope[json.RawMessage]; outbound frames carry concrete payload structs.
type Envelope[T any] struct {
	Type MessageType `json:"type"`
	Data T           `json:"data"`
}

// Frame is an outbound envelope
type Frame = Envelope[any]

// RawEnvelope is an inbound envelope whose data has not been decoded yet
type RawEnvelope = Envelope[json.RawMessage]

// Encode marshals an outbound frame
func Encode(f Frame) ([]byte, error) {
	return json.Marshal(f)
}
