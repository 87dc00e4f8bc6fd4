package handlers

import (
	"go.uber.org/zap"

	"flipfight/internal/protocol"
	"flipfight/pkg/realtime"
)

// HubEmitter encodes game events and hands them to a realtime.Hub.
type HubEmitter struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

func NewHubEmitter(hub *realtime.Hub, logger *zap.Logger) *HubEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HubEmitter{hub: hub, logger: logger}
}

func (e *HubEmitter) Join(roomID, connID string) {
	e.hub.Join(roomID, connID)
}

func (e *HubEmitter) Leave(roomID, connID string) {
	e.hub.Leave(roomID, connID)
}

func (e *HubEmitter) EmitTo(connID, event string, payload any) {
	msg, err := protocol.Encode(event, payload)
	if err != nil {
		e.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	if !e.hub.EmitTo(connID, msg) {
		e.logger.Warn("event not delivered", zap.String("event", event), zap.String("conn", connID))
	}
}

func (e *HubEmitter) EmitToRoom(roomID, event string, payload any) {
	msg, err := protocol.Encode(event, payload)
	if err != nil {
		e.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	if delivered, members := e.hub.Publish(roomID, msg); delivered < members {
		e.logger.Warn("event not delivered to every member",
			zap.String("event", event),
			zap.String("room", roomID),
			zap.Int("delivered", delivered),
			zap.Int("members", members))
	}
}
