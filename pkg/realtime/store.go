package realtime

import (
	"errors"
	"sync"
	"time"
)

// ErrRoomExists is returned by Create when the id is already taken.
var ErrRoomExists = errors.New("room already exists")

// Room holds state for one room.
type Room[T any] struct {
	ID    string
	State T
}

// RoomStore manages rooms and the deferred tasks scheduled against them.
type RoomStore[T any] struct {
	mu      sync.RWMutex
	rooms   map[string]*Room[T]
	timerMu sync.Mutex
	timers  map[uint64]*time.Timer
	nextID  uint64
	closed  bool
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any]() *RoomStore[T] {
	return &RoomStore[T]{
		rooms:  make(map[string]*Room[T]),
		timers: make(map[uint64]*time.Timer),
	}
}

// Create adds a room with the given id and state. It never replaces an existing room.
func (s *RoomStore[T]) Create(id string, state T) (*Room[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; ok {
		return nil, ErrRoomExists
	}
	r := &Room[T]{ID: id, State: state}
	s.rooms[id] = r
	return r, nil
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T]) Get(id string) (*Room[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Remove deletes the room and reports whether it was present.
func (s *RoomStore[T]) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return false
	}
	delete(s.rooms, id)
	return true
}

// Len returns the number of live rooms.
func (s *RoomStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// After runs fn once delay has elapsed, but only if a room with id still
// exists at that point. The task holds the id, not the room, so a room that
// was removed and recreated under the same id is resolved afresh.
func (s *RoomStore[T]) After(id string, delay time.Duration, fn func(room *Room[T])) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.closed {
		return
	}
	s.nextID++
	key := s.nextID
	s.timers[key] = time.AfterFunc(delay, func() {
		s.timerMu.Lock()
		delete(s.timers, key)
		s.timerMu.Unlock()

		room, ok := s.Get(id)
		if !ok {
			return
		}
		fn(room)
	})
}

// Pending returns the number of scheduled tasks that have not fired yet.
func (s *RoomStore[T]) Pending() int {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return len(s.timers)
}

// Close stops every pending task. Later calls to After are ignored.
func (s *RoomStore[T]) Close() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
