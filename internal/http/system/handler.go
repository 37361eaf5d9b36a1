package system

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/preferences"
)

// Handler serves the network toggle, room occupancy and display preferences.
type Handler struct {
	eng *engine.Engine
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/rooms", h.rooms)
	r.Get("/network", h.network)
	r.With(requireAuth).Put("/network", h.setNetwork)
	r.Get("/preferences/theme", h.theme)
	r.Put("/preferences/theme", h.setTheme)
	r.Post("/preferences/theme/toggle", h.toggleTheme)
}

type networkDTO struct {
	Online bool `json:"online"`
}

type themeDTO struct {
	Theme preferences.Theme `json:"theme"`
}

func (h *Handler) rooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Rooms())
}

func (h *Handler) network(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, networkDTO{Online: h.eng.Online()})
}

func (h *Handler) setNetwork(w http.ResponseWriter, r *http.Request) {
	var req networkDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.eng.SetOnline(req.Online)

	writeJSON(w, http.StatusOK, networkDTO{Online: h.eng.Online()})
}

func (h *Handler) theme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, themeDTO{Theme: h.eng.Theme()})
}

func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	var req themeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.eng.SetTheme(req.Theme); err != nil {
		if errors.Is(err, preferences.ErrInvalidTheme) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) toggleTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, themeDTO{Theme: h.eng.ToggleTheme()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
