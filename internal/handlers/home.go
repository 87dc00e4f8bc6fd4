package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"flipfight/internal/game"
	"flipfight/internal/viewmodel"
)

type HomeHandler struct {
	store *game.Store
}

func NewHomeHandler(store *game.Store) *HomeHandler {
	return &HomeHandler{store: store}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/healthz", h.health)
	r.Get("/rooms/{id}", h.room)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":      "flipfight",
		"websocket": "/ws",
	})
}

func (h *HomeHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewmodel.Health{
		Status:       "ok",
		Rooms:        h.store.Len(),
		PendingTasks: h.store.Pending(),
	})
}

// room reports seats and scores only; cards never leave through HTTP.
func (h *HomeHandler) room(w http.ResponseWriter, r *http.Request) {
	room, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}
	writeJSON(w, http.StatusOK, room.Summary())
}
