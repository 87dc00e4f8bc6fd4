package viewmodel

// HiddenEmoji is shown in place of a face-down card.
const HiddenEmoji = "?"

// CardView is one card as a recipient is allowed to see it.
// PairID is only present when the card is face up.
type CardView struct {
	Index  int    `json:"index"`
	Emoji  string `json:"emoji"`
	PairID *int   `json:"pairId,omitempty"`
}

// PlayerView is the redacted projection of one player's state.
type PlayerView struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Deck               []CardView `json:"deck"`
	Flipped            []CardView `json:"flipped"`
	Matched            []CardView `json:"matched"`
	Points             int        `json:"points"`
	ConsecutiveMatches int        `json:"consecutiveMatches"`
	FrozenUntilMs      int64      `json:"frozenUntilMs,omitempty"`
	State              string     `json:"state"`
}

// GameState is the per-recipient game-state payload.
type GameState struct {
	Player   *PlayerView `json:"player"`
	Opponent *PlayerView `json:"opponent"`
	RoomID   string      `json:"roomId"`
}

// RoomSummary is the public, card-free description of a room.
type RoomSummary struct {
	RoomID  string          `json:"roomId"`
	Started bool            `json:"started"`
	Players []PlayerSummary `json:"players"`
}

// PlayerSummary describes a player without exposing any card or connection id.
type PlayerSummary struct {
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Matched int    `json:"matched"`
}

// Health is returned by the health endpoint.
type Health struct {
	Status       string `json:"status"`
	Rooms        int    `json:"rooms"`
	PendingTasks int    `json:"pendingTasks"`
}
