package protocol

// RoomCreated acknowledges create-room.
type RoomCreated struct {
	RoomID string `json:"roomId"`
}

// FlipReveal announces a first flip to the whole room.
type FlipReveal struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	CardIndex  int    `json:"cardIndex"`
	Emoji      string `json:"emoji"`
}

// CardFace is a revealed card.
type CardFace struct {
	Index int    `json:"index"`
	Emoji string `json:"emoji"`
}

// FlipResult announces the outcome of a second flip. CardIndex and Emoji are
// the card just flipped; SecondCard is the one that was already face up.
type FlipResult struct {
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	CardIndex  int      `json:"cardIndex"`
	Emoji      string   `json:"emoji"`
	SecondCard CardFace `json:"secondCard"`
	IsMatch    bool     `json:"isMatch"`
}

type GameOver struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}

type SabotageUsed struct {
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
	Action   string `json:"action"`
	TargetID string `json:"targetId"`
}

type SabotageUnflip struct {
	CardIndex int `json:"cardIndex"`
}

// SabotageFreeze carries the freeze length in milliseconds.
type SabotageFreeze struct {
	Duration int64 `json:"duration"`
}

type Error struct {
	Message string `json:"message"`
}
