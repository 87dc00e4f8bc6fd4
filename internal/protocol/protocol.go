package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Inbound events.
const (
	EventCreateRoom = "create-room"
	EventJoinRoom   = "join-room"
	EventFlip       = "flip"
	EventSabotage   = "sabotage"
)

// Outbound events. EventFlip doubles as the first-flip reveal.
const (
	EventRoomCreated     = "room-created"
	EventGameStarted     = "game-started"
	EventGameState       = "game-state"
	EventFlipResult      = "flip-result"
	EventGameOver        = "game-over"
	EventOpponentLeft    = "opponent-left"
	EventSabotageUsed    = "sabotage-used"
	EventSabotageUnflip  = "sabotage-unflip"
	EventSabotageShuffle = "sabotage-shuffle"
	EventSabotageFreeze  = "sabotage-freeze"
	EventError           = "error"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateRoom is the create-room payload.
type CreateRoom struct {
	RoomID     string `json:"roomId" validate:"required,max=32,roomid"`
	PlayerName string `json:"playerName" validate:"max=40"`
}

// JoinRoom is the join-room payload.
type JoinRoom struct {
	RoomID     string `json:"roomId" validate:"required,max=32,roomid"`
	PlayerName string `json:"playerName" validate:"max=40"`
}

// Flip is the flip payload. Range is enforced by the game, not here.
type Flip struct {
	CardIndex *int `json:"cardIndex" validate:"required"`
}

// Sabotage is the sabotage payload.
type Sabotage struct {
	Action string `json:"action" validate:"required,oneof=unflip shuffle freeze"`
}

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("roomid", func(fl validator.FieldLevel) bool {
		return roomIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// Decode parses one inbound frame.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// DecodePayload unmarshals env's payload into dst and validates it.
// Unknown fields are rejected.
func DecodePayload(env Envelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%w: %s: missing payload", ErrInvalidPayload, env.Type)
	}
	dec := json.NewDecoder(bytes.NewReader(env.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Type, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Type, err)
	}
	return nil
}

// Encode builds an outbound frame. A nil payload is omitted.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Type: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", event, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
