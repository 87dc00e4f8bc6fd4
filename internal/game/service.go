package game

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"flipfight/internal/protocol"
)

// Emitter is the pub/sub surface the game needs from the transport.
type Emitter interface {
	Join(roomID, connID string)
	Leave(roomID, connID string)
	EmitTo(connID, event string, payload any)
	EmitToRoom(roomID, event string, payload any)
}

// Config holds the game timings.
type Config struct {
	MismatchHideDelay time.Duration
	FreezeDuration    time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		MismatchHideDelay: 900 * time.Millisecond,
		FreezeDuration:    5 * time.Second,
	}
}

// Service handles inbound player actions for every room.
type Service struct {
	store  *Store
	emit   Emitter
	cfg    Config
	logger *zap.Logger

	mu    sync.Mutex
	seats map[string]string // connID -> roomID
}

// NewService wires a service to its registry and transport. Zero timings
// take their DefaultConfig values.
func NewService(store *Store, emit Emitter, cfg Config, logger *zap.Logger) *Service {
	def := DefaultConfig()
	if cfg.MismatchHideDelay <= 0 {
		cfg.MismatchHideDelay = def.MismatchHideDelay
	}
	if cfg.FreezeDuration <= 0 {
		cfg.FreezeDuration = def.FreezeDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		emit:   emit,
		cfg:    cfg,
		logger: logger,
		seats:  make(map[string]string),
	}
}

// Store returns the registry the service works on.
func (s *Service) Store() *Store {
	return s.store
}

// RoomOf returns the room a connection is seated in.
func (s *Service) RoomOf(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomID, ok := s.seats[connID]
	return roomID, ok
}

// CreateRoom opens roomID with connID as the first player.
func (s *Service) CreateRoom(connID, roomID, playerName string) error {
	if s.seated(connID) {
		return s.reject(connID, ErrAlreadyInRoom)
	}
	_, err := s.store.Create(roomID, connID, playerName, func(room *Room) {
		s.bind(connID, roomID)
		s.emit.Join(roomID, connID)

		s.logger.Info("room created", zap.String("room", roomID), zap.String("conn", connID))
		s.emit.EmitTo(connID, protocol.EventRoomCreated, protocol.RoomCreated{RoomID: roomID})
		s.emit.EmitTo(connID, protocol.EventGameState, room.stateFor(connID, s.store.now()))
	})
	if err != nil {
		return s.reject(connID, err)
	}
	return nil
}

// JoinRoom seats connID as the second player and starts the game.
func (s *Service) JoinRoom(connID, roomID, playerName string) error {
	if s.seated(connID) {
		return s.reject(connID, ErrAlreadyInRoom)
	}
	_, err := s.store.Join(roomID, connID, playerName, func(room *Room) {
		s.bind(connID, roomID)
		s.emit.Join(roomID, connID)

		s.logger.Info("game started", zap.String("room", roomID), zap.String("conn", connID))
		s.emit.EmitToRoom(roomID, protocol.EventGameStarted, nil)
		s.broadcastState(room)
	})
	if err != nil {
		return s.reject(connID, err)
	}
	return nil
}

// Flip turns over cardIndex on connID's board.
func (s *Service) Flip(connID string, cardIndex int) error {
	room, err := s.roomFor(connID)
	if err != nil {
		return s.reject(connID, err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	res, err := room.flip(connID, cardIndex, s.store.now())
	if err != nil {
		return s.reject(connID, err)
	}
	p := res.Player
	if res.Outcome == FirstFlip {
		s.emit.EmitToRoom(room.ID, protocol.EventFlip, protocol.FlipReveal{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			CardIndex:  res.Card.Index,
			Emoji:      res.Card.Emoji,
		})
		s.broadcastState(room)
		return nil
	}

	s.emit.EmitToRoom(room.ID, protocol.EventFlipResult, protocol.FlipResult{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		CardIndex:  res.Card.Index,
		Emoji:      res.Card.Emoji,
		SecondCard: protocol.CardFace{Index: res.Other.Index, Emoji: res.Other.Emoji},
		IsMatch:    res.Outcome == Match,
	})

	switch res.Outcome {
	case Match:
		if res.GameOver {
			s.logger.Info("game over", zap.String("room", room.ID), zap.String("winner", p.ID))
			s.emit.EmitToRoom(room.ID, protocol.EventGameOver, protocol.GameOver{WinnerID: p.ID, WinnerName: p.Name})
			s.closeRoom(room)
			return nil
		}
		s.broadcastState(room)
	case Mismatch:
		s.broadcastState(room)
		s.scheduleHide(room.ID, p.ID, res.ResolveSeq)
	case FirstFlip:
	}
	return nil
}

// scheduleHide turns a mismatch back over after the configured delay. The
// task carries ids only and is a no-op once that mismatch is gone.
func (s *Service) scheduleHide(roomID, playerID string, seq uint64) {
	s.store.After(roomID, s.cfg.MismatchHideDelay, func(room *Room) {
		room.mu.Lock()
		defer room.mu.Unlock()
		if !room.hideMismatch(playerID, seq) {
			return
		}
		s.broadcastState(room)
	})
}

// Sabotage spends connID's points on action against their opponent.
func (s *Service) Sabotage(connID string, action Action) error {
	room, err := s.roomFor(connID)
	if err != nil {
		return s.reject(connID, err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	res, err := room.sabotage(connID, action, s.store.now(), s.cfg.FreezeDuration, s.store.rng)
	if err != nil {
		return s.reject(connID, err)
	}
	target := res.Target.ID
	switch res.Action {
	case ActionUnflip:
		s.emit.EmitTo(target, protocol.EventSabotageUnflip, protocol.SabotageUnflip{CardIndex: res.UnflippedIndex})
	case ActionShuffle:
		s.emit.EmitTo(target, protocol.EventSabotageShuffle, nil)
	case ActionFreeze:
		s.emit.EmitTo(target, protocol.EventSabotageFreeze, protocol.SabotageFreeze{Duration: res.Freeze.Milliseconds()})
	}

	s.logger.Debug("sabotage",
		zap.String("room", room.ID),
		zap.String("from", res.Actor.ID),
		zap.String("action", string(res.Action)),
		zap.String("target", target))
	s.emit.EmitToRoom(room.ID, protocol.EventSabotageUsed, protocol.SabotageUsed{
		FromID:   res.Actor.ID,
		FromName: res.Actor.Name,
		Action:   string(res.Action),
		TargetID: target,
	})
	s.broadcastState(room)
	return nil
}

// Disconnect tells the remaining player and discards the room.
func (s *Service) Disconnect(connID string) {
	room, err := s.roomFor(connID)
	if err != nil {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return
	}
	if other, ok := room.opponent(connID); ok {
		s.emit.EmitTo(other.ID, protocol.EventOpponentLeft, nil)
	}
	s.logger.Info("player left", zap.String("room", room.ID), zap.String("conn", connID))
	s.closeRoom(room)
}

// broadcastState sends each participant their own projection.
func (s *Service) broadcastState(room *Room) {
	now := s.store.now()
	for _, p := range room.players {
		s.emit.EmitTo(p.ID, protocol.EventGameState, room.stateFor(p.ID, now))
	}
}

// closeRoom removes a room whose lock is held and frees its seats.
func (s *Service) closeRoom(room *Room) {
	room.closed = true
	s.store.Remove(room.ID)
	s.mu.Lock()
	for _, p := range room.players {
		if s.seats[p.ID] == room.ID {
			delete(s.seats, p.ID)
		}
	}
	s.mu.Unlock()
	for _, p := range room.players {
		s.emit.Leave(room.ID, p.ID)
	}
}

func (s *Service) roomFor(connID string) (*Room, error) {
	roomID, ok := s.RoomOf(connID)
	if !ok {
		return nil, ErrNotInRoom
	}
	room, ok := s.store.Get(roomID)
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}

// seated reports whether connID sits in a live room.
func (s *Service) seated(connID string) bool {
	_, err := s.roomFor(connID)
	return err == nil
}

func (s *Service) bind(connID, roomID string) {
	s.mu.Lock()
	s.seats[connID] = roomID
	s.mu.Unlock()
}

// reject reports a surfaced error to the actor and drops the rest.
func (s *Service) reject(connID string, err error) error {
	if IsSurfaced(err) {
		s.emit.EmitTo(connID, protocol.EventError, protocol.Error{Message: Message(err)})
		return err
	}
	s.logger.Debug("ignored action", zap.String("conn", connID), zap.Error(err))
	return err
}
