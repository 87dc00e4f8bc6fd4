package game

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameRunes = 20

// FlipState is where a player is in the two-card flip cycle.
type FlipState int

const (
	// Idle: nothing face up, flips accepted.
	Idle FlipState = iota
	// OneFlipped: one card face up, waiting for the second.
	OneFlipped
	// Resolving: a mismatch is on display until the auto-hide runs. Flips
	// are rejected. Sabotage may shrink Flipped meanwhile.
	Resolving
)

func (s FlipState) String() string {
	switch s {
	case Idle:
		return "idle"
	case OneFlipped:
		return "one_flipped"
	case Resolving:
		return "resolving"
	default:
		return "unknown"
	}
}

// Player tracks one participant's board and score.
type Player struct {
	ID                 string
	Name               string
	JoinedAt           time.Time
	Deck               Deck
	Flipped            []Card
	Matched            []Card
	Points             int
	ConsecutiveMatches int
	FrozenUntil        time.Time
	State              FlipState
	// resolveSeq identifies the mismatch currently on display.
	resolveSeq uint64
}

func newPlayer(id, name string, deck Deck, now time.Time) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		JoinedAt: now,
		Deck:     deck,
		Flipped:  make([]Card, 0, 2),
		Matched:  make([]Card, 0, DeckSize),
	}
}

// Frozen reports whether flips are blocked at now.
func (p *Player) Frozen(now time.Time) bool {
	return now.Before(p.FrozenUntil)
}

// Finished reports whether every card on the board is matched.
func (p *Player) Finished() bool {
	return len(p.Matched) == DeckSize
}

func (p *Player) isFlipped(index int) bool {
	for _, c := range p.Flipped {
		if c.Index == index {
			return true
		}
	}
	return false
}

func (p *Player) isMatched(index int) bool {
	for _, c := range p.Matched {
		if c.Index == index {
			return true
		}
	}
	return false
}

func (p *Player) matchedSet() map[int]bool {
	set := make(map[int]bool, len(p.Matched))
	for _, c := range p.Matched {
		set[c.Index] = true
	}
	return set
}

// clearFlipped drops every face-up card. A pending mismatch keeps the
// player in Resolving until its auto-hide runs.
func (p *Player) clearFlipped() {
	p.Flipped = p.Flipped[:0]
	if p.State == OneFlipped {
		p.State = Idle
	}
}

// normalizeName trims and caps a display name, falling back when empty.
func normalizeName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	return name
}
