package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prabink/khaatabook/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
}

type summaryResponse struct {
	TotalOutstanding    int64       `json:"total_outstanding"`
	TotalCustomers      int         `json:"total_customers"`
	CustomersWithDue    int         `json:"customers_with_due"`
	CustomersOverLimit  int         `json:"customers_over_limit"`
	OverdueTransactions int         `json:"overdue_transactions"`
	OverdueCustomerIDs  []uuid.UUID `json:"overdue_customer_ids"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), time.Now())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(summaryResponse{
		TotalOutstanding:    summary.TotalOutstanding,
		TotalCustomers:      summary.TotalCustomers,
		CustomersWithDue:    summary.CustomersWithDue,
		CustomersOverLimit:  summary.CustomersOverLimit,
		OverdueTransactions: summary.OverdueTransactions,
		OverdueCustomerIDs:  summary.OverdueCustomerIDs,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
