package game

import (
	"sync"
	"sync/atomic"
	"time"
)

// MaxPlayers is the room capacity.
const MaxPlayers = 2

// Room holds one match. All fields are guarded by mu; methods with a
// lowercase name expect the caller to hold it.
type Room struct {
	mu        sync.Mutex
	ID        string
	CreatedAt time.Time
	Started   bool
	players   []*Player
	closed    bool
	seqs      *atomic.Uint64
}

func newRoom(id string, creator *Player, now time.Time) *Room {
	return &Room{
		ID:        id,
		CreatedAt: now,
		players:   []*Player{creator},
	}
}

func (r *Room) addPlayer(p *Player) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, p)
	if len(r.players) == MaxPlayers {
		r.Started = true
	}
	return nil
}

func (r *Room) player(id string) (*Player, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) opponent(id string) (*Player, bool) {
	for _, p := range r.players {
		if p.ID != id {
			return p, true
		}
	}
	return nil, false
}

// nextResolveSeq hands out an id for a mismatch, unique across every room of
// the owning Store.
func (r *Room) nextResolveSeq() uint64 {
	if r.seqs == nil {
		r.seqs = new(atomic.Uint64)
	}
	return r.seqs.Add(1)
}
