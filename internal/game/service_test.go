package game

import (
	"errors"
	"testing"
	"time"

	"flipfight/internal/protocol"
	"flipfight/internal/viewmodel"
)

const testHideDelay = 20 * time.Millisecond

func newTestService(t *testing.T) (*Service, *recorder, *fakeClock) {
	t.Helper()
	rec := newRecorder()
	clock := newFakeClock()
	cfg := Config{
		MismatchHideDelay: testHideDelay,
		FreezeDuration:    5 * time.Second,
	}
	svc := NewService(NewStore(NewSeededRand(42), clock.Now), rec, cfg, nil)
	t.Cleanup(svc.Store().Close)
	return svc, rec, clock
}

// startGame creates testRoomID as "a" and joins it as "b".
func startGame(t *testing.T, svc *Service) *Room {
	t.Helper()
	if err := svc.CreateRoom("a", testRoomID, "alice"); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := svc.JoinRoom("b", testRoomID, "bob"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	room, ok := svc.Store().Get(testRoomID)
	if !ok {
		t.Fatal("room missing after join")
	}
	return room
}

func lastState(t *testing.T, rec *recorder, connID string) viewmodel.GameState {
	t.Helper()
	events := rec.received(connID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Event == protocol.EventGameState {
			return events[i].Payload.(viewmodel.GameState)
		}
	}
	t.Fatalf("%s received no game-state", connID)
	return viewmodel.GameState{}
}

func lastError(rec *recorder, connID string) (string, bool) {
	events := rec.received(connID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Event == protocol.EventError {
			return events[i].Payload.(protocol.Error).Message, true
		}
	}
	return "", false
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestService_CreateRoom(t *testing.T) {
	svc, rec, _ := newTestService(t)
	if err := svc.CreateRoom("a", testRoomID, "alice"); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	got := eventNames(rec.received("a"))
	want := []string{protocol.EventRoomCreated, protocol.EventGameState}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events %v, want %v", got, want)
	}
	state := lastState(t, rec, "a")
	if state.Opponent != nil {
		t.Error("creator should see no opponent yet")
	}
	if state.Player == nil || state.Player.Name != "alice" {
		t.Errorf("player %+v", state.Player)
	}
	if roomID, ok := svc.RoomOf("a"); !ok || roomID != testRoomID {
		t.Errorf("RoomOf %q %v", roomID, ok)
	}
}

func TestService_CreateRoomErrors(t *testing.T) {
	svc, rec, _ := newTestService(t)
	svc.CreateRoom("a", testRoomID, "alice")

	if err := svc.CreateRoom("c", testRoomID, "carol"); !errors.Is(err, ErrRoomExists) {
		t.Errorf("err %v, want ErrRoomExists", err)
	}
	if msg, _ := lastError(rec, "c"); msg != "Room already exists" {
		t.Errorf("message %q", msg)
	}
	if err := svc.CreateRoom("a", "OTHER", "alice"); !errors.Is(err, ErrAlreadyInRoom) {
		t.Errorf("err %v, want ErrAlreadyInRoom", err)
	}
	if msg, _ := lastError(rec, "a"); msg != "Already in a room" {
		t.Errorf("message %q", msg)
	}
}

func TestService_JoinRoomErrors(t *testing.T) {
	svc, rec, _ := newTestService(t)
	if err := svc.JoinRoom("b", "missing", "bob"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("err %v, want ErrRoomNotFound", err)
	}
	if msg, _ := lastError(rec, "b"); msg != "Room full or not found" {
		t.Errorf("message %q", msg)
	}
	startGame(t, svc)
	if err := svc.JoinRoom("c", testRoomID, "carol"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("err %v, want ErrRoomFull", err)
	}
	if msg, _ := lastError(rec, "c"); msg != "Room full or not found" {
		t.Errorf("message %q", msg)
	}
}

// Alice creates, Bob joins, Alice flips a mismatching pair and the cards
// turn back over after the hide delay.
func TestService_MismatchScenario(t *testing.T) {
	svc, rec, _ := newTestService(t)
	room := startGame(t, svc)

	for _, conn := range []string{"a", "b"} {
		names := eventNames(rec.received(conn))
		started := false
		for _, n := range names {
			if n == protocol.EventGameStarted {
				started = true
			}
		}
		if !started {
			t.Errorf("%s missed game-started: %v", conn, names)
		}
		state := lastState(t, rec, conn)
		for _, cv := range state.Opponent.Deck {
			if cv.Emoji != viewmodel.HiddenEmoji {
				t.Errorf("%s sees opponent card %d as %q", conn, cv.Index, cv.Emoji)
			}
		}
	}

	a, _ := room.player("a")
	second := -1
	for i := range a.Deck {
		if a.Deck[i].PairID != a.Deck[3].PairID {
			second = i
			break
		}
	}
	rec.reset()

	if err := svc.Flip("a", 3); err != nil {
		t.Fatalf("first flip: %v", err)
	}
	for _, conn := range []string{"a", "b"} {
		events := rec.received(conn)
		if len(events) == 0 || events[0].Event != protocol.EventFlip {
			t.Fatalf("%s events %v, want flip first", conn, eventNames(events))
		}
		reveal := events[0].Payload.(protocol.FlipReveal)
		if reveal.CardIndex != 3 || reveal.Emoji != a.Deck[3].Emoji || reveal.PlayerID != "a" {
			t.Errorf("%s reveal %+v", conn, reveal)
		}
	}
	if state := lastState(t, rec, "b"); state.Opponent.Deck[3].Emoji != a.Deck[3].Emoji {
		t.Errorf("b should see a's card 3 face up, got %q", state.Opponent.Deck[3].Emoji)
	}

	rec.reset()
	if err := svc.Flip("a", second); err != nil {
		t.Fatalf("second flip: %v", err)
	}
	for _, conn := range []string{"a", "b"} {
		events := rec.received(conn)
		if len(events) == 0 || events[0].Event != protocol.EventFlipResult {
			t.Fatalf("%s events %v, want flip-result first", conn, eventNames(events))
		}
		result := events[0].Payload.(protocol.FlipResult)
		if result.IsMatch || result.CardIndex != second || result.SecondCard.Index != 3 {
			t.Errorf("%s result %+v", conn, result)
		}
		if state := lastState(t, rec, conn); len(state.Player.Flipped)+len(state.Opponent.Flipped) != 2 {
			t.Errorf("%s should see both cards face up while resolving", conn)
		}
	}

	rec.reset()
	waitFor(t, "auto-hide broadcast", func() bool {
		return rec.count(protocol.EventGameState) >= 2
	})
	for _, conn := range []string{"a", "b"} {
		state := lastState(t, rec, conn)
		view := state.Player
		if conn == "b" {
			view = state.Opponent
		}
		if len(view.Flipped) != 0 {
			t.Errorf("%s sees %d flipped after hide, want 0", conn, len(view.Flipped))
		}
		if view.Points != 0 {
			t.Errorf("%s sees points %d, want 0", conn, view.Points)
		}
	}
}

func TestService_SilentIgnoresEmitNothing(t *testing.T) {
	svc, rec, _ := newTestService(t)
	room := startGame(t, svc)
	rec.reset()

	if err := svc.Flip("a", 42); !errors.Is(err, ErrInvalidCard) {
		t.Errorf("err %v, want ErrInvalidCard", err)
	}
	if err := svc.Flip("nobody", 0); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("err %v, want ErrNotInRoom", err)
	}
	a, _ := room.player("a")
	x, y := findMismatch(t, a)
	svc.Flip("a", x)
	svc.Flip("a", y)
	rec.reset()
	if err := svc.Flip("a", 0); !errors.Is(err, ErrResolving) && !errors.Is(err, ErrInvalidCard) {
		t.Errorf("err %v, want a silent rejection", err)
	}
	if events := rec.snapshot(); len(events) != 0 {
		t.Errorf("silent rejections emitted %v", eventNames(events))
	}
}

func TestService_FrozenFlipIsReported(t *testing.T) {
	svc, rec, clock := newTestService(t)
	room := startGame(t, svc)
	b, _ := room.player("b")
	b.Points = 2

	if err := svc.Sabotage("b", ActionFreeze); err != nil {
		t.Fatalf("Sabotage: %v", err)
	}
	rec.reset()
	clock.Advance(5*time.Second - time.Millisecond)
	if err := svc.Flip("a", 0); !errors.Is(err, ErrFrozen) {
		t.Fatalf("err %v, want ErrFrozen", err)
	}
	if msg, ok := lastError(rec, "a"); !ok || msg != "You are frozen!" {
		t.Errorf("message %q", msg)
	}
	if _, ok := lastError(rec, "b"); ok {
		t.Error("opponent should not receive the frozen error")
	}
	clock.Advance(time.Millisecond)
	if err := svc.Flip("a", 0); err != nil {
		t.Errorf("flip at thaw: %v", err)
	}
}

func TestService_SabotageNotEnoughPoints(t *testing.T) {
	svc, rec, _ := newTestService(t)
	room := startGame(t, svc)
	a, _ := room.player("a")
	b, _ := room.player("b")
	a.Points = 1
	rec.reset()

	if err := svc.Sabotage("a", ActionFreeze); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err %v, want ErrInsufficientPoints", err)
	}
	if a.Points != 1 {
		t.Errorf("Points %d, want 1", a.Points)
	}
	if !b.FrozenUntil.IsZero() {
		t.Error("b should not be frozen")
	}
	events := rec.snapshot()
	if len(events) != 1 || events[0].To != "a" || events[0].Event != protocol.EventError {
		t.Fatalf("events %+v, want one error to a", events)
	}
	if msg := events[0].Payload.(protocol.Error).Message; msg != "Not enough points" {
		t.Errorf("message %q", msg)
	}
}

func TestService_SabotageUnflip(t *testing.T) {
	svc, rec, _ := newTestService(t)
	room := startGame(t, svc)
	a, _ := room.player("a")
	a.Points = 1

	rec.reset()
	if err := svc.Sabotage("a", ActionUnflip); !errors.Is(err, ErrNothingToUnflip) {
		t.Fatalf("err %v, want ErrNothingToUnflip", err)
	}
	if len(rec.snapshot()) != 0 || a.Points != 1 {
		t.Fatal("void unflip should emit nothing and charge nothing")
	}

	svc.Flip("b", 7)
	rec.reset()
	if err := svc.Sabotage("a", ActionUnflip); err != nil {
		t.Fatalf("Sabotage: %v", err)
	}
	if a.Points != 0 {
		t.Errorf("Points %d, want 0", a.Points)
	}
	got := eventNames(rec.snapshot())
	want := []string{
		protocol.EventSabotageUnflip,
		protocol.EventSabotageUsed,
		protocol.EventGameState,
		protocol.EventGameState,
	}
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events %v, want %v", got, want)
		}
	}
	events := rec.snapshot()
	if events[0].To != "b" || events[0].Payload.(protocol.SabotageUnflip).CardIndex != 7 {
		t.Errorf("unflip notice %+v", events[0])
	}
	used := events[1].Payload.(protocol.SabotageUsed)
	if used.FromID != "a" || used.TargetID != "b" || used.Action != "unflip" {
		t.Errorf("sabotage-used %+v", used)
	}
}

func TestService_SabotageShuffleAndFreezeNotices(t *testing.T) {
	svc, rec, _ := newTestService(t)
	room := startGame(t, svc)
	a, _ := room.player("a")
	a.Points = 4
	rec.reset()

	svc.Sabotage("a", ActionShuffle)
	svc.Sabotage("a", ActionFreeze)

	var shuffled, frozen bool
	for _, e := range rec.received("b") {
		switch e.Event {
		case protocol.EventSabotageShuffle:
			shuffled = e.To == "b"
		case protocol.EventSabotageFreeze:
			frozen = e.Payload.(protocol.SabotageFreeze).Duration == 5000
		}
	}
	if !shuffled || !frozen {
		t.Errorf("shuffle notice %v freeze notice %v", shuffled, frozen)
	}
	for _, e := range rec.snapshot() {
		if e.To == "a" && (e.Event == protocol.EventSabotageShuffle || e.Event == protocol.EventSabotageFreeze) {
			t.Errorf("actor received victim notice %s", e.Event)
		}
	}
	if a.Points != 0 {
		t.Errorf("Points %d, want 0", a.Points)
	}
}

func TestService_GameOver(t *testing.T) {
	svc, rec, _ := newTestService(t)
	room := startGame(t, svc)
	a, _ := room.player("a")

	for pair := 1; pair < len(Palette); pair++ {
		i, j := findPair(t, a)
		svc.Flip("a", i)
		svc.Flip("a", j)
	}
	if _, ok := svc.Store().Get(testRoomID); !ok {
		t.Fatal("room ended early")
	}
	i, j := findPair(t, a)
	svc.Flip("a", i)
	rec.reset()
	svc.Flip("a", j)

	got := eventNames(rec.snapshot())
	if len(got) != 2 || got[0] != protocol.EventFlipResult || got[1] != protocol.EventGameOver {
		t.Fatalf("events %v, want flip-result then game-over", got)
	}
	over := rec.snapshot()[1].Payload.(protocol.GameOver)
	if over.WinnerID != "a" || over.WinnerName != "alice" {
		t.Errorf("game-over %+v", over)
	}
	if _, ok := svc.Store().Get(testRoomID); ok {
		t.Error("room should be removed after game over")
	}
	if _, ok := svc.RoomOf("a"); ok {
		t.Error("a should be unseated")
	}
	if _, ok := svc.RoomOf("b"); ok {
		t.Error("b should be unseated")
	}
	if err := svc.CreateRoom("a", testRoomID, "alice"); err != nil {
		t.Errorf("rematch create: %v", err)
	}
}

func TestService_Disconnect(t *testing.T) {
	svc, rec, _ := newTestService(t)
	room := startGame(t, svc)
	a, _ := room.player("a")
	x, y := findMismatch(t, a)
	svc.Flip("a", x)
	svc.Flip("a", y)
	rec.reset()

	svc.Disconnect("a")
	events := rec.snapshot()
	if len(events) != 1 || events[0].To != "b" || events[0].Event != protocol.EventOpponentLeft {
		t.Fatalf("events %+v, want opponent-left to b", events)
	}
	if _, ok := svc.Store().Get(testRoomID); ok {
		t.Error("room should be removed after disconnect")
	}
	if _, ok := svc.RoomOf("b"); ok {
		t.Error("b should be unseated")
	}

	// The pending auto-hide must find nothing to do.
	time.Sleep(3 * testHideDelay)
	if n := len(rec.snapshot()); n != 1 {
		t.Errorf("%d events after disconnect, want 1", n)
	}

	svc.Disconnect("a")
	svc.Disconnect("b")
	if n := len(rec.snapshot()); n != 1 {
		t.Errorf("repeat disconnects emitted events")
	}
}

func TestService_DisconnectAlone(t *testing.T) {
	svc, rec, _ := newTestService(t)
	svc.CreateRoom("a", testRoomID, "alice")
	rec.reset()
	svc.Disconnect("a")
	if len(rec.snapshot()) != 0 {
		t.Error("lone disconnect should emit nothing")
	}
	if svc.Store().Len() != 0 {
		t.Error("room should be removed")
	}
}

// A hide scheduled in a discarded room must not turn over a mismatch made in
// a new room that reuses the id.
func TestService_StaleHideIgnoresRecreatedRoom(t *testing.T) {
	const delay = 300 * time.Millisecond
	svc := NewService(NewStore(NewSeededRand(42), nil), newRecorder(), Config{
		MismatchHideDelay: delay,
		FreezeDuration:    5 * time.Second,
	}, nil)
	t.Cleanup(svc.Store().Close)

	flipMismatch := func(room *Room, connID string) {
		room.mu.Lock()
		p, _ := room.player(connID)
		x, y := findMismatch(t, p)
		room.mu.Unlock()
		svc.Flip(connID, x)
		svc.Flip(connID, y)
	}
	stateOf := func(room *Room, connID string) FlipState {
		room.mu.Lock()
		defer room.mu.Unlock()
		p, _ := room.player(connID)
		return p.State
	}

	svc.CreateRoom("a", testRoomID, "alice")
	svc.JoinRoom("b", testRoomID, "bob")
	old, _ := svc.Store().Get(testRoomID)
	flipMismatch(old, "b")
	svc.Disconnect("a")

	time.Sleep(delay / 2)
	if err := svc.CreateRoom("b", testRoomID, "bob"); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if err := svc.JoinRoom("c", testRoomID, "carol"); err != nil {
		t.Fatalf("join: %v", err)
	}
	room, _ := svc.Store().Get(testRoomID)
	flipMismatch(room, "b")
	recreated := time.Now()

	// Past the old hide, well short of the new one.
	time.Sleep(delay * 3 / 4)
	if st := stateOf(room, "b"); st != Resolving {
		t.Fatalf("State %v %v after the new mismatch, want resolving", st, time.Since(recreated))
	}
	waitFor(t, "new mismatch hidden", func() bool { return stateOf(room, "b") == Idle })
	if elapsed := time.Since(recreated); elapsed < delay {
		t.Errorf("new mismatch hidden after %v, want at least %v", elapsed, delay)
	}
}
