package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"flipfight/internal/config"
	"flipfight/internal/game"
	"flipfight/internal/protocol"
	"flipfight/pkg/realtime"
)

// Client-facing text for frames rejected before they reach the game.
const (
	msgMalformed    = "Invalid message"
	msgUnknownEvent = "Unknown event"
	msgInvalidInput = "Invalid payload"
)

// GameHandler serves the game WebSocket. Each connection is one player seat.
type GameHandler struct {
	svc      *game.Service
	hub      *realtime.Hub
	emit     *HubEmitter
	cfg      config.WSConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewGameHandler(svc *game.Service, hub *realtime.Hub, emit *HubEmitter, cfg config.WSConfig, allowedOrigins []string, logger *zap.Logger) *GameHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 4096
	}
	h := &GameHandler{svc: svc, hub: hub, emit: emit, cfg: cfg, logger: logger}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
	return h
}

func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.serveWS)
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

func (h *GameHandler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	queue := h.hub.Register(connID)
	logger := h.logger.With(zap.String("conn", connID))
	logger.Debug("connected", zap.String("remote", r.RemoteAddr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(conn, queue, logger)
	}()

	h.readPump(conn, connID, logger)

	h.svc.Disconnect(connID)
	h.hub.Unregister(connID)
	<-done
	logger.Debug("disconnected")
}

func (h *GameHandler) readPump(conn *websocket.Conn, connID string, logger *zap.Logger) {
	conn.SetReadLimit(h.cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Info("read failed", zap.Error(err))
			}
			return
		}
		h.dispatch(connID, data, logger)
	}
}

// writePump owns every write on conn. It exits when the hub closes queue or
// a write fails, and closes conn so the reader unblocks too.
func (h *GameHandler) writePump(conn *websocket.Conn, queue <-chan []byte, logger *zap.Logger) {
	ping := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ping.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-queue:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *GameHandler) dispatch(connID string, data []byte, logger *zap.Logger) {
	env, err := protocol.Decode(data)
	if err != nil {
		h.refuse(connID, msgMalformed, err, logger)
		return
	}

	switch env.Type {
	case protocol.EventCreateRoom:
		var p protocol.CreateRoom
		if err := protocol.DecodePayload(env, &p); err != nil {
			h.refuse(connID, msgInvalidInput, err, logger)
			return
		}
		_ = h.svc.CreateRoom(connID, p.RoomID, p.PlayerName)
	case protocol.EventJoinRoom:
		var p protocol.JoinRoom
		if err := protocol.DecodePayload(env, &p); err != nil {
			h.refuse(connID, msgInvalidInput, err, logger)
			return
		}
		_ = h.svc.JoinRoom(connID, p.RoomID, p.PlayerName)
	case protocol.EventFlip:
		var p protocol.Flip
		if err := protocol.DecodePayload(env, &p); err != nil {
			h.refuse(connID, msgInvalidInput, err, logger)
			return
		}
		_ = h.svc.Flip(connID, *p.CardIndex)
	case protocol.EventSabotage:
		var p protocol.Sabotage
		if err := protocol.DecodePayload(env, &p); err != nil {
			h.refuse(connID, msgInvalidInput, err, logger)
			return
		}
		_ = h.svc.Sabotage(connID, game.Action(p.Action))
	default:
		h.refuse(connID, msgUnknownEvent, fmt.Errorf("%w: %s", protocol.ErrUnknownEvent, env.Type), logger)
	}
}

func (h *GameHandler) refuse(connID, message string, err error, logger *zap.Logger) {
	logger.Debug("frame refused", zap.Error(err))
	h.emit.EmitTo(connID, protocol.EventError, protocol.Error{Message: message})
}
