package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/prabink/khaatabook/internal/ledger"
	"github.com/prabink/khaatabook/internal/report"
)

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -5)
	future := now.AddDate(0, 0, 5)

	overdueCustomer := uuid.New()
	settledCustomer := uuid.New()
	overLimitCustomer := uuid.New()

	customers := []*ledger.Customer{
		{ID: overdueCustomer, Name: "Aarav Sharma", OutstandingBalance: 150000, CreditLimit: 500000},
		{ID: settledCustomer, Name: "Sita Devi", OutstandingBalance: 0},
		{ID: overLimitCustomer, Name: "Hari Thapa", OutstandingBalance: 900000, CreditLimit: 500000},
	}

	transactions := []*ledger.Transaction{
		// Two overdue sales for the same customer count once in the id list.
		{ID: uuid.New(), CustomerID: overdueCustomer, Type: ledger.TypeSale, Status: ledger.StatusDue, DueDate: &past},
		{ID: uuid.New(), CustomerID: overdueCustomer, Type: ledger.TypeSale, Status: ledger.StatusDue, DueDate: &past},
		{ID: uuid.New(), CustomerID: overLimitCustomer, Type: ledger.TypeSale, Status: ledger.StatusDue, DueDate: &future},
		{ID: uuid.New(), CustomerID: settledCustomer, Type: ledger.TypePayment, Status: ledger.StatusPaid},
	}

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListCustomers(gomock.Any()).Return(customers, nil)
	repo.EXPECT().ListTransactions(gomock.Any(), ledger.ListFilter{}).Return(transactions, nil)

	svc := report.NewService(ledger.NewService(repo))

	summary, err := svc.Summary(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(1050000), summary.TotalOutstanding)
	assert.Equal(t, 3, summary.TotalCustomers)
	assert.Equal(t, 2, summary.CustomersWithDue)
	assert.Equal(t, 1, summary.CustomersOverLimit)
	assert.Equal(t, 2, summary.OverdueTransactions)
	assert.Equal(t, []uuid.UUID{overdueCustomer}, summary.OverdueCustomerIDs)
}

func TestService_Summary_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil)
	repo.EXPECT().ListTransactions(gomock.Any(), ledger.ListFilter{}).Return(nil, nil)

	svc := report.NewService(ledger.NewService(repo))

	summary, err := svc.Summary(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Zero(t, summary.TotalOutstanding)
	assert.Zero(t, summary.TotalCustomers)
	assert.Empty(t, summary.OverdueCustomerIDs)
}
