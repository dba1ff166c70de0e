package model

import "errors"

// Common errors used across the application
var (
	// Room lifecycle errors
	ErrAlreadyInRoom   = errors.New("player is already in a room")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrNoRoomAvailable = errors.New("no public room available")
	ErrNotInRoom       = errors.New("player is not in a room")
	ErrNotHost         = errors.New("player is not the host")
	ErrInvalidCapacity = errors.New("room size must be 2 or 4")

	// Game errors
	ErrGameInProgress = errors.New("game is in progress")
	ErrGameNotRunning = errors.New("game is not running")
	ErrRoomNotFull    = errors.New("room is not full")
	ErrNotYourTurn    = errors.New("not this player's turn")
	ErrInvalidMove    = errors.New("cell is already marked")
	ErrOutOfBounds    = errors.New("position is outside the board")

	// Credential errors
	ErrTicketNotFound     = errors.New("ticket not found or expired")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("role not permitted")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
)

// ErrorKind is the coarse category an error is reported under
type ErrorKind string

const (
	KindValidation ErrorKind = "ValidationError"
	KindState      ErrorKind = "StateError"
	KindNotFound   ErrorKind = "NotFoundError"
	KindProtocol   ErrorKind = "ProtocolError"
	KindAuth       ErrorKind = "AuthError"
	KindInternal   ErrorKind = "InternalError"
)

var errorKinds = map[error]ErrorKind{
	ErrAlreadyInRoom:      KindState,
	ErrRoomFull:           KindState,
	ErrNoRoomAvailable:    KindNotFound,
	ErrNotInRoom:          KindNotFound,
	ErrNotHost:            KindState,
	ErrInvalidCapacity:    KindValidation,
	ErrGameInProgress:     KindState,
	ErrGameNotRunning:     KindState,
	ErrRoomNotFull:        KindState,
	ErrNotYourTurn:        KindState,
	ErrInvalidMove:        KindState,
	ErrOutOfBounds:        KindValidation,
	ErrRoomNotFound:       KindNotFound,
	ErrTicketNotFound:     KindNotFound,
	ErrPlayerNotFound:     KindNotFound,
	ErrAccountNotFound:    KindNotFound,
	ErrUnauthenticated:    KindAuth,
	ErrForbidden:          KindAuth,
	ErrInvalidCredentials: KindAuth,
	ErrUsernameExists:     KindState,
}

// kinded lets other packages attach a kind to their own error types
type kinded interface {
	Kind() ErrorKind
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	for sentinel, kind := range errorKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}
