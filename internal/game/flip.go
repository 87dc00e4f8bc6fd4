package game

import "time"

// FlipOutcome says which branch of the flip cycle a flip took.
type FlipOutcome int

const (
	// FirstFlip turned up the first card of a pair attempt.
	FirstFlip FlipOutcome = iota
	// Match turned up the partner of the first card.
	Match
	// Mismatch turned up a card that does not pair with the first.
	Mismatch
)

// FlipResult describes an accepted flip.
type FlipResult struct {
	Player  *Player
	Card    Card
	Other   Card
	Outcome FlipOutcome
	// GameOver is set when the match completed the player's board.
	GameOver bool
	// ResolveSeq identifies a mismatch for hideMismatch.
	ResolveSeq uint64
}

// flip runs the flip cycle for one player. Every precondition is checked
// before anything is mutated; a rejected flip leaves the room untouched.
func (r *Room) flip(playerID string, index int, now time.Time) (FlipResult, error) {
	if r.closed {
		return FlipResult{}, ErrNotInRoom
	}
	if !r.Started {
		return FlipResult{}, ErrNotStarted
	}
	p, ok := r.player(playerID)
	if !ok {
		return FlipResult{}, ErrPlayerNotFound
	}
	if p.Frozen(now) {
		return FlipResult{}, ErrFrozen
	}
	switch p.State {
	case Resolving:
		return FlipResult{}, ErrResolving
	case Idle, OneFlipped:
	}
	if len(p.Flipped) >= 2 {
		return FlipResult{}, ErrTooManyFlipped
	}
	if index < 0 || index >= DeckSize || p.isMatched(index) || p.isFlipped(index) {
		return FlipResult{}, ErrInvalidCard
	}

	card := p.Deck[index]
	p.Flipped = append(p.Flipped, card)
	if len(p.Flipped) == 1 {
		p.State = OneFlipped
		return FlipResult{Player: p, Card: card, Outcome: FirstFlip}, nil
	}

	other := p.Flipped[0]
	res := FlipResult{Player: p, Card: card, Other: other}
	if other.PairID == card.PairID {
		p.Matched = append(p.Matched, p.Flipped...)
		p.Flipped = p.Flipped[:0]
		p.ConsecutiveMatches++
		p.Points += p.ConsecutiveMatches
		p.State = Idle
		res.Outcome = Match
		res.GameOver = p.Finished()
		return res, nil
	}

	p.ConsecutiveMatches = 0
	p.State = Resolving
	p.resolveSeq = r.nextResolveSeq()
	res.Outcome = Mismatch
	res.ResolveSeq = p.resolveSeq
	return res, nil
}

// hideMismatch ends the Resolving state identified by seq by turning the
// cards back over. It reports false when there is nothing to hide or seq
// belongs to another mismatch.
func (r *Room) hideMismatch(playerID string, seq uint64) bool {
	if r.closed {
		return false
	}
	p, ok := r.player(playerID)
	if !ok || p.State != Resolving || p.resolveSeq != seq {
		return false
	}
	p.Flipped = p.Flipped[:0]
	p.State = Idle
	return true
}
