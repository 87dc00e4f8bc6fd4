package game

import (
	"sync"
	"testing"
	"time"
)

const testRoomID = "ABCD1234"

// newTestRoom returns a started room with players "a" and "b".
func newTestRoom(t *testing.T) (*Room, *Player, *Player) {
	t.Helper()
	s := NewStore(NewSeededRand(1), nil)
	room, err := s.Create(testRoomID, "a", "alice", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Join(testRoomID, "b", "bob", nil); err != nil {
		t.Fatalf("Join: %v", err)
	}
	a, _ := room.player("a")
	b, _ := room.player("b")
	return room, a, b
}

// findPair returns two face-down indices that share a pair id.
func findPair(t *testing.T, p *Player) (int, int) {
	t.Helper()
	for i := 0; i < DeckSize; i++ {
		if p.isMatched(i) || p.isFlipped(i) {
			continue
		}
		for j := i + 1; j < DeckSize; j++ {
			if p.isMatched(j) || p.isFlipped(j) {
				continue
			}
			if p.Deck[i].PairID == p.Deck[j].PairID {
				return i, j
			}
		}
	}
	t.Fatal("no face-down pair left")
	return 0, 0
}

// findMismatch returns two face-down indices with different pair ids.
func findMismatch(t *testing.T, p *Player) (int, int) {
	t.Helper()
	for i := 0; i < DeckSize; i++ {
		if p.isMatched(i) || p.isFlipped(i) {
			continue
		}
		for j := i + 1; j < DeckSize; j++ {
			if p.isMatched(j) || p.isFlipped(j) {
				continue
			}
			if p.Deck[i].PairID != p.Deck[j].PairID {
				return i, j
			}
		}
	}
	t.Fatal("no face-down mismatch left")
	return 0, 0
}

type emitted struct {
	To      string
	Room    string
	Event   string
	Payload any
}

// recorder is an Emitter that keeps everything it is asked to send.
type recorder struct {
	mu      sync.Mutex
	events  []emitted
	members map[string]map[string]bool
}

func newRecorder() *recorder {
	return &recorder{members: make(map[string]map[string]bool)}
}

func (r *recorder) Join(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[roomID] == nil {
		r.members[roomID] = make(map[string]bool)
	}
	r.members[roomID][connID] = true
}

func (r *recorder) Leave(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members[roomID], connID)
}

func (r *recorder) EmitTo(connID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{To: connID, Event: event, Payload: payload})
}

func (r *recorder) EmitToRoom(roomID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{Room: roomID, Event: event, Payload: payload})
}

func (r *recorder) snapshot() []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emitted(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// received returns the events connID would see: direct sends plus traffic
// for rooms it is joined to.
func (r *recorder) received(connID string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.To == connID || (e.Room != "" && r.members[e.Room][connID]) {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.snapshot() {
		if e.Event == event {
			n++
		}
	}
	return n
}

func eventNames(events []emitted) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Event)
	}
	return names
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
