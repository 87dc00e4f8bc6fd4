package game

import "errors"

// Errors reported back to the acting connection.
var (
	ErrRoomExists         = errors.New("room already exists")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room full")
	ErrAlreadyInRoom      = errors.New("already in a room")
	ErrFrozen             = errors.New("player frozen")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrUnknownAction      = errors.New("unknown sabotage action")
)

// Errors that are dropped without telling the client.
var (
	ErrNotInRoom       = errors.New("not in a room")
	ErrNotStarted      = errors.New("game not started")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNoOpponent      = errors.New("no opponent")
	ErrResolving       = errors.New("mismatch still resolving")
	ErrTooManyFlipped  = errors.New("two cards already face up")
	ErrInvalidCard     = errors.New("invalid card index")
	ErrNothingToUnflip = errors.New("opponent has no face-up card")
)

// IsSurfaced reports whether err should be sent to the client as an error event.
func IsSurfaced(err error) bool {
	return Message(err) != ""
}

// Message returns the client-facing text for err, or "" when err is silent.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrRoomFull):
		return "Room full or not found"
	case errors.Is(err, ErrRoomExists):
		return "Room already exists"
	case errors.Is(err, ErrAlreadyInRoom):
		return "Already in a room"
	case errors.Is(err, ErrFrozen):
		return "You are frozen!"
	case errors.Is(err, ErrInsufficientPoints):
		return "Not enough points"
	case errors.Is(err, ErrUnknownAction):
		return "Unknown sabotage action"
	default:
		return ""
	}
}
