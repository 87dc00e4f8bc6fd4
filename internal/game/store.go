package game

import (
	"errors"
	"sync/atomic"
	"time"

	"flipfight/pkg/realtime"
)

// Default display names for the two seats.
const (
	DefaultCreatorName = "Player 1"
	DefaultJoinerName  = "Player 2"
)

// Store is the room registry. It delegates storage and deferred tasks to
// realtime.RoomStore.
type Store struct {
	r    *realtime.RoomStore[*Room]
	rng  Rand
	now  func() time.Time
	seqs atomic.Uint64
}

// NewStore creates an empty registry. A nil rng uses DefaultRand and a nil
// now uses time.Now in UTC.
func NewStore(rng Rand, now func() time.Time) *Store {
	if rng == nil {
		rng = DefaultRand
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		r:   realtime.NewRoomStore[*Room](),
		rng: rng,
		now: now,
	}
}

// Create registers a room with the creator seated and dealt a board. It
// rejects an id that is already in use. fn, when not nil, runs with the new
// room locked, before anyone else can reach it.
func (s *Store) Create(roomID, playerID, playerName string, fn func(room *Room)) (*Room, error) {
	room := newRoom(roomID, s.newPlayer(playerID, playerName, DefaultCreatorName), s.now())
	room.seqs = &s.seqs
	room.mu.Lock()
	defer room.mu.Unlock()
	if _, err := s.r.Create(room.ID, room); err != nil {
		if errors.Is(err, realtime.ErrRoomExists) {
			return nil, ErrRoomExists
		}
		return nil, err
	}
	if fn != nil {
		fn(room)
	}
	return room, nil
}

// Join seats a second player with their own board and starts the room. fn,
// when not nil, runs with the room still locked after the seat is taken.
func (s *Store) Join(roomID, playerID, playerName string, fn func(room *Room)) (*Room, error) {
	room, ok := s.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if err := room.addPlayer(s.newPlayer(playerID, playerName, DefaultJoinerName)); err != nil {
		return nil, err
	}
	if fn != nil {
		fn(room)
	}
	return room, nil
}

// Get returns the room by id if it exists.
func (s *Store) Get(roomID string) (*Room, bool) {
	room, ok := s.r.Get(roomID)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Remove deletes the room unconditionally.
func (s *Store) Remove(roomID string) {
	s.r.Remove(roomID)
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	return s.r.Len()
}

// Pending returns the number of deferred tasks not yet fired.
func (s *Store) Pending() int {
	return s.r.Pending()
}

// After schedules fn against the room that holds roomID when delay elapses.
// fn is skipped when the room is gone by then.
func (s *Store) After(roomID string, delay time.Duration, fn func(room *Room)) {
	s.r.After(roomID, delay, func(room *realtime.Room[*Room]) {
		fn(room.State)
	})
}

// Close stops pending deferred tasks.
func (s *Store) Close() {
	s.r.Close()
}

func (s *Store) newPlayer(playerID, playerName, fallback string) *Player {
	return newPlayer(playerID, normalizeName(playerName, fallback), NewDeck(s.rng), s.now())
}
