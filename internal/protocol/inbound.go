package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brentkao/roomcoord/internal/model"
)

// Request is a decoded and validated inbound message. Data holds the
// payload struct for Type, or nil for types without a payload.
type Request struct {
	Type MessageType
	Data any
}

// CreateRoomData is the payload of create-room
type CreateRoomData struct {
	IsPublic bool
	Size     int
}

// JoinRoomData is the payload of join-room. IsPublic is required on the
// wire but plays no part in the lookup.
type JoinRoomData struct {
	RoomID   model.RoomID
	IsPublic bool
}

// MoveData is the payload of game-make-move
type MoveData struct {
	X int
	Y int
}

// Position returns the move target as a board position
func (m MoveData) Position() model.Position {
	return model.Position{X: m.X, Y: m.Y}
}

// PingData is the payload of ping
type PingData struct {
	Timestamp string
}

// Wire shapes. Pointers distinguish a missing field from its zero value.

type createRoomWire struct {
	IsPublic *bool `json:"isPublic"`
	Detail   *struct {
		Size *int `json:"size"`
	} `json:"detail"`
}

type joinRoomWire struct {
	RoomID   *string `json:"roomId"`
	IsPublic *bool   `json:"isPublic"`
}

type moveWire struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type pingWire struct {
	Timestamp *string `json:"timestamp"`
}

// Parser decodes inbound frames
type Parser struct {
	boardSize int
}

// NewParser creates a Parser that accepts move coordinates in [0, boardSize)
func NewParser(boardSize int) *Parser {
	if boardSize <= 0 {
		boardSize = model.DefaultBoardSize
	}
	return &Parser{boardSize: boardSize}
}

// Parse decodes one frame. A frame that is not an envelope yields a
// ProtocolError, an unknown type a generic error, and a payload that
// does not match its schema a ValidationError with field detail.
func (p *Parser) Parse(frame []byte) (Request, error) {
	var env RawEnvelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Type == "" {
		return Request{}, errInvalidFormat()
	}
	if !env.Type.IsInbound() {
		return Request{}, errUnknownType(env.Type)
	}

	req := Request{Type: env.Type}
	var err error
	switch env.Type {
	case TypeCreateRoom:
		req.Data, err = p.parseCreateRoom(env.Data)
	case TypeJoinRoom:
		req.Data, err = p.parseJoinRoom(env.Data)
	case TypeGameMakeMove:
		req.Data, err = p.parseMove(env.Data)
	case TypePing:
		req.Data, err = p.parsePing(env.Data)
	case TypeJoinRandomRoom, TypeLeaveRoom, TypePublicRoomList, TypeRoomDetail, TypeStartGame:
		err = parseEmpty(env.Data)
	}
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

func (p *Parser) parseCreateRoom(data json.RawMessage) (CreateRoomData, error) {
	var w createRoomWire
	if err := decodeStrict(data, &w); err != nil {
		return CreateRoomData{}, err
	}

	var fields []FieldError
	if w.IsPublic == nil {
		fields = append(fields, FieldError{Field: "isPublic", Error: "Required"})
	}
	switch {
	case w.Detail == nil:
		fields = append(fields, FieldError{Field: "detail", Error: "Required"})
	case w.Detail.Size == nil:
		fields = append(fields, FieldError{Field: "detail.size", Error: "Required"})
	case !model.ValidCapacity(*w.Detail.Size):
		fields = append(fields, FieldError{Field: "detail.size", Error: "Size must be either 2 or 4"})
	}
	if len(fields) > 0 {
		return CreateRoomData{}, errValidation(fields)
	}
	return CreateRoomData{IsPublic: *w.IsPublic, Size: *w.Detail.Size}, nil
}

func (p *Parser) parseJoinRoom(data json.RawMessage) (JoinRoomData, error) {
	var w joinRoomWire
	if err := decodeStrict(data, &w); err != nil {
		return JoinRoomData{}, err
	}

	var fields []FieldError
	if w.RoomID == nil {
		fields = append(fields, FieldError{Field: "roomId", Error: "Required"})
	}
	if w.IsPublic == nil {
		fields = append(fields, FieldError{Field: "isPublic", Error: "Required"})
	}
	if len(fields) > 0 {
		return JoinRoomData{}, errValidation(fields)
	}
	return JoinRoomData{RoomID: model.RoomID(*w.RoomID), IsPublic: *w.IsPublic}, nil
}

func (p *Parser) parseMove(data json.RawMessage) (MoveData, error) {
	var w moveWire
	if err := decodeStrict(data, &w); err != nil {
		return MoveData{}, err
	}

	var fields []FieldError
	check := func(name string, v *int) {
		switch {
		case v == nil:
			fields = append(fields, FieldError{Field: name, Error: "Required"})
		case *v < 0 || *v >= p.boardSize:
			fields = append(fields, FieldError{
				Field: name,
				Error: fmt.Sprintf("Number must be between 0 and %d", p.boardSize-1),
			})
		}
	}
	check("x", w.X)
	check("y", w.Y)
	if len(fields) > 0 {
		return MoveData{}, errValidation(fields)
	}
	return MoveData{X: *w.X, Y: *w.Y}, nil
}

func (p *Parser) parsePing(data json.RawMessage) (PingData, error) {
	var w pingWire
	if err := decodeStrict(data, &w); err != nil {
		return PingData{}, err
	}
	if w.Timestamp == nil {
		return PingData{}, errValidation([]FieldError{{Field: "timestamp", Error: "Required"}})
	}
	return PingData{Timestamp: *w.Timestamp}, nil
}

// parseEmpty accepts a missing data field, null, or an empty object
func parseEmpty(data json.RawMessage) error {
	var w struct{}
	return decodeStrict(data, &w)
}

// decodeStrict unmarshals data into v rejecting unknown fields. A missing
// or null data is treated as an empty object.
func decodeStrict(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errValidation([]FieldError{fieldErrorFrom(err)})
	}
	return nil
}

// fieldErrorFrom turns a decoder error into field detail
func fieldErrorFrom(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "data"
		}
		return FieldError{Field: field, Error: fmt.Sprintf("Expected %s, received %s", typeErr.Type.Kind(), typeErr.Value)}
	}

	msg := err.Error()
	if name, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		return FieldError{Field: strings.Trim(name, `"`), Error: "Unrecognized key"}
	}
	return FieldError{Field: "data", Error: msg}
}
