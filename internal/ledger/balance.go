package ledger

import (
	"slices"
	"time"
)

// Recalculate replays the full transaction history of one customer and
// assigns each transaction its running balance. It returns the final balance,
// which becomes the customer's outstanding balance (0 for an empty history).
//
// Transactions are ordered by date ascending; the sort is stable, so equal
// dates keep their incoming order. Callers pass the set in insertion order
// (the store returns it ordered by date, then creation time), which makes the
// tie-break deterministic across restarts.
//
// The function is pure apart from mutating the given transactions: it touches
// nothing but BalanceAfter and persists nothing.
func Recalculate(txs []*Transaction) int64 {
	slices.SortStableFunc(txs, func(a, b *Transaction) int {
		return a.Date.Compare(b.Date)
	})

	var balance int64

	for _, tx := range txs {
		balance += tx.Delta()
		tx.BalanceAfter = balance
	}

	return balance
}

// DueDateFor derives a transaction's due date. Sales fall due creditDays
// after their date (0 when absent); payments have no due date.
func DueDateFor(txType Type, date time.Time, creditDays *int) *time.Time {
	if txType != TypeSale {
		return nil
	}

	days := 0
	if creditDays != nil {
		days = *creditDays
	}

	due := date.AddDate(0, 0, days)

	return &due
}

// StatusFor derives the stored status assigned at creation (and re-derived on
// edit): payments are settled by definition, sales start out due.
func StatusFor(txType Type) Status {
	if txType == TypePayment {
		return StatusPaid
	}

	return StatusDue
}
