package suggestion

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prabink/khaatabook/internal/ledger"
	"github.com/prabink/khaatabook/internal/suggest"
)

type Handler struct {
	svc *suggest.Service
}

func NewHandler(svc *suggest.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.suggest)
	r.Post("/learn", h.learn)
}

type suggestRequest struct {
	Type                ledger.Type `json:"type"`
	Amount              int64       `json:"amount"`
	CustomerName        string      `json:"customer_name"`
	PreviousDescription string      `json:"previous_description,omitempty"`
}

type suggestResponse struct {
	Description string `json:"description"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	description, err := h.svc.Suggest(r.Context(), suggest.Input{
		Type:                req.Type,
		Amount:              req.Amount,
		CustomerName:        req.CustomerName,
		PreviousDescription: req.PreviousDescription,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(suggestResponse{Description: description}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type learnRequest struct {
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Learn(r.Context(), req.Pattern, req.Description); err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
}
