package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/prabink/khaatabook/internal/ledger"
)

// Status in responses is the display status: a stored "due" renders as
// "overdue" once the due date has passed. The stored value never changes.
type transactionResponse struct {
	ID           uuid.UUID     `json:"id"`
	CustomerID   uuid.UUID     `json:"customer_id"`
	Date         time.Time     `json:"date"`
	Type         ledger.Type   `json:"type"`
	Amount       int64         `json:"amount"`
	Description  string        `json:"description,omitempty"`
	CreditDays   *int          `json:"credit_days,omitempty"`
	DueDate      *time.Time    `json:"due_date,omitempty"`
	BalanceAfter int64         `json:"balance_after"`
	Status       ledger.Status `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

func toResponse(tx *ledger.Transaction, now time.Time) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		CustomerID:   tx.CustomerID,
		Date:         tx.Date,
		Type:         tx.Type,
		Amount:       tx.Amount,
		Description:  tx.Description,
		CreditDays:   tx.CreditDays,
		DueDate:      tx.DueDate,
		BalanceAfter: tx.BalanceAfter,
		Status:       tx.DisplayStatus(now),
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction, now time.Time) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx, now)
	}

	return resp
}
