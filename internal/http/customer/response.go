package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/prabink/khaatabook/internal/ledger"
)

type customerResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone,omitempty"`
	Address            string     `json:"address,omitempty"`
	CreditLimit        int64      `json:"credit_limit"`
	OutstandingBalance int64      `json:"outstanding_balance"`
	DefaultCreditDays  int        `json:"default_credit_days"`
	OverLimit          bool       `json:"over_limit"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

func toResponse(c *ledger.Customer) customerResponse {
	return customerResponse{
		ID:                 c.ID,
		Code:               c.Code,
		Name:               c.Name,
		Phone:              c.Phone,
		Address:            c.Address,
		CreditLimit:        c.CreditLimit,
		OutstandingBalance: c.OutstandingBalance,
		DefaultCreditDays:  c.DefaultCreditDays,
		OverLimit:          c.OverLimit(),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toResponseList(customers []*ledger.Customer) []customerResponse {
	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = toResponse(c)
	}

	return resp
}

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

func toTransactionResponse(tx *ledger.Transaction, now time.Time) transactionResponse {
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

func toTransactionResponseList(txs []*ledger.Transaction, now time.Time) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toTransactionResponse(tx, now)
	}

	return resp
}
