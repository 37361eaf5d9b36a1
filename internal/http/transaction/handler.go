package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

type Handler struct {
	eng *engine.Engine
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

// Routes mounts the ledger endpoints. Writes go through requireAuth.
func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.With(requireAuth).Post("/", h.create)
	r.With(requireAuth).Patch("/{id}/verify", h.verify)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := transaction.Status(s)
		if status != transaction.StatusVerifying && status != transaction.StatusVerified {
			http.Error(w, "status must be Verifying or Verified", http.StatusBadRequest)
			return
		}

		filter.Status = new(status)
	}

	if s := r.URL.Query().Get("room"); s != "" {
		filter.Room = new(s)
	}

	writeJSON(w, http.StatusOK, toResponseList(h.eng.Transactions(filter)))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.eng.Transaction(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

// GST is always charged at the standard rate, so items carry no rate.
type itemRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type createManualRequest struct {
	SenderName      string        `json:"sender_name"`
	SenderAddress   string        `json:"sender_address"`
	ReceiverName    string        `json:"receiver_name"`
	ReceiverAddress string        `json:"receiver_address"`
	Self            bool          `json:"self"`
	Items           []itemRequest `json:"items"`
	Extras          []string      `json:"extras"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createManualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := make([]transaction.Product, len(req.Items))
	for i, it := range req.Items {
		items[i] = transaction.Product{Name: it.Name, Price: it.Price}
	}

	tx, err := h.eng.SubmitManual(engine.ManualParams{
		SenderName:      req.SenderName,
		SenderAddress:   req.SenderAddress,
		ReceiverName:    req.ReceiverName,
		ReceiverAddress: req.ReceiverAddress,
		Self:            req.Self,
		Items:           items,
		Extras:          req.Extras,
	})
	if err != nil {
		if errors.Is(err, engine.ErrInvalidManual) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	tx, err := h.eng.MarkVerified(chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrNotFound):
			http.Error(w, "transaction not found", http.StatusNotFound)
		case errors.Is(err, transaction.ErrAlreadyVerified):
			http.Error(w, "transaction already verified", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

// Totals serves the archive plus live verified totals.
func (h *Handler) Totals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, totalsResponse{
		totalsDTO: toTotals(h.eng.Totals()),
		Archive:   toTotals(h.eng.Archive()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
