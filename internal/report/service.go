package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prabink/khaatabook/internal/ledger"
)

// Summary aggregates the ledger state for the dashboard.
type Summary struct {
	TotalOutstanding    int64
	TotalCustomers      int
	CustomersWithDue    int
	CustomersOverLimit  int
	OverdueTransactions int
	OverdueCustomerIDs  []uuid.UUID
}

// Service computes read-time aggregates. Nothing here is persisted; overdue
// in particular is always derived from the clock.
type Service struct {
	ledger *ledger.Service
}

func NewService(ledgerService *ledger.Service) *Service {
	return &Service{ledger: ledgerService}
}

func (s *Service) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	customers, err := s.ledger.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	transactions, err := s.ledger.ListTransactions(ctx, ledger.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	summary := &Summary{
		TotalCustomers:     len(customers),
		OverdueCustomerIDs: []uuid.UUID{},
	}

	for _, c := range customers {
		summary.TotalOutstanding += c.OutstandingBalance

		if c.OutstandingBalance > 0 {
			summary.CustomersWithDue++
		}

		if c.OverLimit() {
			summary.CustomersOverLimit++
		}
	}

	seen := make(map[uuid.UUID]bool)

	for _, tx := range transactions {
		if !tx.OverdueAt(now) {
			continue
		}

		summary.OverdueTransactions++

		if !seen[tx.CustomerID] {
			seen[tx.CustomerID] = true

			summary.OverdueCustomerIDs = append(summary.OverdueCustomerIDs, tx.CustomerID)
		}
	}

	return summary, nil
}
