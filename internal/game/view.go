package game

import (
	"time"

	"flipfight/internal/viewmodel"
)

// projectPlayer builds the view of p that any recipient may see. Face-down
// cards carry neither their emoji nor their pair id.
func projectPlayer(p *Player, now time.Time) *viewmodel.PlayerView {
	if p == nil {
		return nil
	}
	faceUp := make(map[int]bool, len(p.Flipped)+len(p.Matched))
	for _, c := range p.Flipped {
		faceUp[c.Index] = true
	}
	for _, c := range p.Matched {
		faceUp[c.Index] = true
	}

	deck := make([]viewmodel.CardView, 0, DeckSize)
	for i, c := range p.Deck {
		if faceUp[i] {
			deck = append(deck, revealed(c))
			continue
		}
		deck = append(deck, viewmodel.CardView{Index: i, Emoji: viewmodel.HiddenEmoji})
	}

	view := &viewmodel.PlayerView{
		ID:                 p.ID,
		Name:               p.Name,
		Deck:               deck,
		Flipped:            revealedAll(p.Flipped),
		Matched:            revealedAll(p.Matched),
		Points:             p.Points,
		ConsecutiveMatches: p.ConsecutiveMatches,
		State:              p.State.String(),
	}
	if p.Frozen(now) {
		view.FrozenUntilMs = p.FrozenUntil.UnixMilli()
	}
	return view
}

func revealed(c Card) viewmodel.CardView {
	pairID := c.PairID
	return viewmodel.CardView{Index: c.Index, Emoji: c.Emoji, PairID: &pairID}
}

func revealedAll(cards []Card) []viewmodel.CardView {
	out := make([]viewmodel.CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, revealed(c))
	}
	return out
}

// stateFor returns the game-state payload addressed to recipientID.
func (r *Room) stateFor(recipientID string, now time.Time) viewmodel.GameState {
	state := viewmodel.GameState{RoomID: r.ID}
	if self, ok := r.player(recipientID); ok {
		state.Player = projectPlayer(self, now)
	}
	if other, ok := r.opponent(recipientID); ok {
		state.Opponent = projectPlayer(other, now)
	}
	return state
}

// Summary describes the room without exposing any card or connection id.
func (r *Room) Summary() viewmodel.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]viewmodel.PlayerSummary, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, viewmodel.PlayerSummary{
			Name:    p.Name,
			Points:  p.Points,
			Matched: len(p.Matched),
		})
	}
	return viewmodel.RoomSummary{
		RoomID:  r.ID,
		Started: r.Started,
		Players: players,
	}
}
