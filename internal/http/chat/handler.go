package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
)

// Handler exposes room chats. Channels are room numbers.
type Handler struct {
	eng *engine.Engine
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/typing", h.typing)
	r.Get("/{channel}/messages", h.messages)
	r.Get("/{channel}/typing", h.typingIn)
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Messages(chi.URLParam(r, "channel")))
}

func (h *Handler) typing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Typing())
}

func (h *Handler) typingIn(w http.ResponseWriter, r *http.Request) {
	t, ok := h.eng.Typing()[chi.URLParam(r, "channel")]
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
