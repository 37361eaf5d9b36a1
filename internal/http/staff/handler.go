package staff

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/staff"
)

type Handler struct {
	eng *engine.Engine
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.With(requireAuth).Post("/", h.create)
	r.With(requireAuth).Put("/{id}", h.update)
	r.With(requireAuth).Post("/import", h.importRoster)
}

type employeeDTO struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	ImageURL   string `json:"image_url"`
	RoomNumber string `json:"room_number"`
}

type importResponse struct {
	Imported int              `json:"imported"`
	Staff    []staff.Employee `json:"staff"`
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Staff())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req employeeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	emp, err := h.eng.AddStaff(staff.CreateParams{
		Name:       req.Name,
		Role:       req.Role,
		ImageURL:   req.ImageURL,
		RoomNumber: req.RoomNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, emp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid employee id", http.StatusBadRequest)
		return
	}

	var req employeeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	emp := staff.Employee{
		ID:         id,
		Name:       req.Name,
		Role:       req.Role,
		ImageURL:   req.ImageURL,
		RoomNumber: req.RoomNumber,
	}

	if err := h.eng.UpdateStaff(emp); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emp)
}

func (h *Handler) importRoster(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	added, err := h.eng.ImportStaff(file)
	if err != nil {
		if errors.Is(err, staff.ErrRoomTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		// Anything else is a malformed upload.
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	writeJSON(w, http.StatusCreated, importResponse{Imported: len(added), Staff: added})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, staff.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, staff.ErrRoomTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, staff.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("staff request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
