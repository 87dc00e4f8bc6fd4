package game

import "time"

// Action is a sabotage a player can buy.
type Action string

const (
	ActionUnflip  Action = "unflip"
	ActionShuffle Action = "shuffle"
	ActionFreeze  Action = "freeze"
)

var actionCosts = map[Action]int{
	ActionUnflip:  1,
	ActionShuffle: 2,
	ActionFreeze:  2,
}

// Cost returns the point price of the action.
func (a Action) Cost() (int, bool) {
	cost, ok := actionCosts[a]
	return cost, ok
}

// SabotageResult describes an applied sabotage.
type SabotageResult struct {
	Actor  *Player
	Target *Player
	Action Action
	Cost   int
	// UnflippedIndex is the card turned back over by an unflip.
	UnflippedIndex int
	// Freeze is how long the target is frozen for.
	Freeze time.Duration
}

// sabotage applies action against the actor's opponent. Nothing is charged
// or changed unless the action takes effect.
func (r *Room) sabotage(actorID string, action Action, now time.Time, freeze time.Duration, rng Rand) (SabotageResult, error) {
	if r.closed {
		return SabotageResult{}, ErrNotInRoom
	}
	actor, ok := r.player(actorID)
	if !ok {
		return SabotageResult{}, ErrPlayerNotFound
	}
	target, ok := r.opponent(actorID)
	if !ok {
		return SabotageResult{}, ErrNoOpponent
	}
	cost, ok := action.Cost()
	if !ok {
		return SabotageResult{}, ErrUnknownAction
	}
	if actor.Points < cost {
		return SabotageResult{}, ErrInsufficientPoints
	}

	res := SabotageResult{Actor: actor, Target: target, Action: action, Cost: cost}
	switch action {
	case ActionUnflip:
		n := len(target.Flipped)
		if n == 0 {
			return SabotageResult{}, ErrNothingToUnflip
		}
		res.UnflippedIndex = target.Flipped[n-1].Index
		target.Flipped = target.Flipped[:n-1]
		if target.State == OneFlipped {
			target.State = Idle
		}
	case ActionShuffle:
		if rng == nil {
			rng = DefaultRand
		}
		shuffleUnmatched(&target.Deck, target.matchedSet(), rng)
		target.clearFlipped()
	case ActionFreeze:
		target.FrozenUntil = now.Add(freeze)
		res.Freeze = freeze
	}

	actor.Points -= cost
	return res, nil
}
