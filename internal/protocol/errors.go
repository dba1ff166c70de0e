package protocol

import (
	"errors"
	"fmt"

	"github.com/brentkao/roomcoord/internal/model"
)

// FieldError is one failed field check
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is a protocol-level failure. It carries its own kind so that
// model.KindOf classifies it without a sentinel.
type Error struct {
	kind   model.ErrorKind
	Code   string
	Msg    string
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s: %s", e.Msg, e.Fields[0].Field, e.Fields[0].Error)
}

// Kind returns the error category
func (e *Error) Kind() model.ErrorKind {
	return e.kind
}

// ErrBinaryFrame is reported for non-text frames
var ErrBinaryFrame = &Error{kind: model.KindProtocol, Code: "binary_frame", Msg: "Invalid message format"}

// Constructors for the parser's failure modes

func errInvalidFormat() *Error {
	return &Error{kind: model.KindProtocol, Code: "invalid_format", Msg: "Invalid message format"}
}

func errUnknownType(t MessageType) *Error {
	return &Error{kind: model.KindProtocol, Code: "unknown_type", Msg: fmt.Sprintf("Unknown message type %q", t)}
}

func errValidation(fields []FieldError) *Error {
	return &Error{kind: model.KindValidation, Code: "validation_failed", Msg: "Invalid message data", Fields: fields}
}

// ErrorData is the payload of an error envelope
type ErrorData struct {
	Msg    string          `json:"msg"`
	Code   string          `json:"code"`
	Kind   model.ErrorKind `json:"kind"`
	Errors []FieldError    `json:"errors,omitempty"`
}

// errorCodes maps domain sentinels to stable wire codes
var errorCodes = map[error]string{
	model.ErrAlreadyInRoom:   "already_in_room",
	model.ErrRoomNotFound:    "room_not_found",
	model.ErrRoomFull:        "room_full",
	model.ErrNoRoomAvailable: "no_room_available",
	model.ErrNotInRoom:       "not_in_room",
	model.ErrNotHost:         "not_host",
	model.ErrInvalidCapacity: "invalid_capacity",
	model.ErrGameInProgress:  "game_in_progress",
	model.ErrGameNotRunning:  "game_not_running",
	model.ErrRoomNotFull:     "room_not_full",
	model.ErrNotYourTurn:     "not_your_turn",
	model.ErrInvalidMove:     "invalid_move",
	model.ErrOutOfBounds:     "out_of_bounds",
	model.ErrUnauthenticated: "unauthenticated",
	model.ErrForbidden:       "forbidden",
}

// NewErrorData describes err for the client. Internal errors are not
// echoed verbatim.
func NewErrorData(err error) ErrorData {
	var perr *Error
	if errors.As(err, &perr) {
		return ErrorData{Msg: perr.Msg, Code: perr.Code, Kind: perr.kind, Errors: perr.Fields}
	}

	kind := model.KindOf(err)
	if kind == model.KindInternal {
		return ErrorData{Msg: "internal error", Code: "internal_error", Kind: kind}
	}

	code := "error"
	for sentinel, c := range errorCodes {
		if errors.Is(err, sentinel) {
			code = c
			break
		}
	}
	return ErrorData{Msg: err.Error(), Code: code, Kind: kind}
}

// ErrorFrame wraps err in an error envelope
func ErrorFrame(err error) Frame {
	return Frame{Type: TypeError, Data: NewErrorData(err)}
}
