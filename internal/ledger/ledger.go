package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type represents the economic direction of a transaction.
type Type string

const (
	TypeSale    Type = "sale"    // credit extended, increases the customer's debt
	TypePayment Type = "payment" // credit repaid, decreases the customer's debt
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeSale || t == TypePayment
}

// Status represents the lifecycle state of a transaction. Only "paid" and
// "due" are ever stored; "overdue" is derived at read time from the due date.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusDue     Status = "due"
	StatusOverdue Status = "overdue"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ValidationError reports structurally invalid input. The mutation service
// returns it before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Customer is a party the shop extends credit to.
type Customer struct {
	ID                 uuid.UUID
	Code               string // human-facing code, e.g. "CUST-4F2A1B"
	Name               string
	Phone              string
	Address            string
	CreditLimit        int64 // cents; advisory only, never enforced
	OutstandingBalance int64 // cents; derived, running balance after the last transaction
	DefaultCreditDays  int
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// OverLimit reports whether the customer's debt exceeds the credit limit.
// Customers without a limit are never over it.
func (c *Customer) OverLimit() bool {
	return c.CreditLimit > 0 && c.OutstandingBalance > c.CreditLimit
}

// Transaction is a single sale or payment on a customer's ledger.
//
// DueDate and BalanceAfter are derived: the due date from Date/Type/CreditDays,
// the balance from replaying the customer's full history in chronological
// order. Both are stored for cheap reads and recomputed on every mutation.
type Transaction struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	Date         time.Time
	Type         Type
	Amount       int64 // cents, always positive; sign is implied by Type
	Description  string
	CreditDays   *int // sales only
	DueDate      *time.Time
	BalanceAfter int64
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Delta returns the signed effect of the transaction on the running balance.
func (t *Transaction) Delta() int64 {
	if t.Type == TypePayment {
		return -t.Amount
	}

	return t.Amount
}

// OverdueAt reports whether the transaction should display as overdue at the
// given instant. Stored status never transitions to overdue.
func (t *Transaction) OverdueAt(now time.Time) bool {
	return t.Status != StatusPaid && t.DueDate != nil && t.DueDate.Before(now)
}

// DisplayStatus returns the status a reader should see at the given instant.
func (t *Transaction) DisplayStatus(now time.Time) Status {
	if t.OverdueAt(now) {
		return StatusOverdue
	}

	return t.Status
}
