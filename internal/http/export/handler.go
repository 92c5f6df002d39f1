package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prabink/khaatabook/internal/export"
	"github.com/prabink/khaatabook/internal/ledger"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.export)
}

type exportRequest struct {
	Format              export.Format `json:"format"`
	IncludeCustomers    bool          `json:"include_customers"`
	IncludeTransactions bool          `json:"include_transactions"`
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, err := h.svc.Export(r.Context(), export.Options{
		Format:              req.Format,
		IncludeCustomers:    req.IncludeCustomers,
		IncludeTransactions: req.IncludeTransactions,
	}, time.Now())
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))

	_, _ = w.Write(file.Data)
}
