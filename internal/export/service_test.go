package export_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/prabink/khaatabook/internal/export"
	"github.com/prabink/khaatabook/internal/ledger"
)

func fixtures() ([]*ledger.Customer, []*ledger.Transaction) {
	customerID := uuid.MustParse("3e5c9ec1-24ff-40f8-b2d4-5e6baf8b1a6b")
	dueDate := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)

	customers := []*ledger.Customer{
		{
			ID:                 customerID,
			Code:               "CUST-A1B2C3",
			Name:               "Aarav Sharma",
			Phone:              "+977-9800000001",
			CreditLimit:        5000000,
			OutstandingBalance: 1250050,
			DefaultCreditDays:  30,
		},
	}

	transactions := []*ledger.Transaction{
		{
			ID:           uuid.MustParse("9f1b6a1c-94a3-4f6b-8a74-cc9c1b2d3e4f"),
			CustomerID:   customerID,
			Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Type:         ledger.TypeSale,
			Amount:       1250050,
			Description:  "Rice wholesale order",
			DueDate:      &dueDate,
			BalanceAfter: 1250050,
			Status:       ledger.StatusDue,
		},
	}

	return customers, transactions
}

func TestService_Export_CSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	customers, transactions := fixtures()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListCustomers(gomock.Any()).Return(customers, nil)
	repo.EXPECT().ListTransactions(gomock.Any(), ledger.ListFilter{}).Return(transactions, nil)

	svc := export.NewService(ledger.NewService(repo))

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	file, err := svc.Export(context.Background(), export.Options{
		Format:              export.FormatCSV,
		IncludeCustomers:    true,
		IncludeTransactions: true,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "khaatabook_export_20240301_093000.csv", file.Name)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Data)
	assert.Contains(t, content, "id,code,name,phone,address,credit_limit,outstanding_balance,default_credit_days")
	assert.Contains(t, content, "CUST-A1B2C3,Aarav Sharma,+977-9800000001,,50000.00,12500.50,30")
	assert.Contains(t, content, "id,customer_id,date,type,amount,description,due_date,balance_after,status")
	assert.Contains(t, content, "2024-01-15,sale,12500.50,Rice wholesale order,2024-02-14,12500.50,due")
}

func TestService_Export_JSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	customers, transactions := fixtures()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListCustomers(gomock.Any()).Return(customers, nil)
	repo.EXPECT().ListTransactions(gomock.Any(), ledger.ListFilter{}).Return(transactions, nil)

	svc := export.NewService(ledger.NewService(repo))

	file, err := svc.Export(context.Background(), export.Options{
		Format:              export.FormatJSON,
		IncludeCustomers:    true,
		IncludeTransactions: true,
	}, time.Now())
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(file.Name, ".json"))
	assert.Equal(t, "application/json", file.ContentType)

	var payload struct {
		Customers []struct {
			Code               string `json:"code"`
			OutstandingBalance string `json:"outstanding_balance"`
		} `json:"customers"`
		Transactions []struct {
			Type    string `json:"type"`
			Amount  string `json:"amount"`
			DueDate string `json:"due_date"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(file.Data, &payload))

	require.Len(t, payload.Customers, 1)
	assert.Equal(t, "CUST-A1B2C3", payload.Customers[0].Code)
	assert.Equal(t, "12500.50", payload.Customers[0].OutstandingBalance)

	require.Len(t, payload.Transactions, 1)
	assert.Equal(t, "sale", payload.Transactions[0].Type)
	assert.Equal(t, "12500.50", payload.Transactions[0].Amount)
	assert.Equal(t, "2024-02-14", payload.Transactions[0].DueDate)
}

func TestService_Export_CustomersOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	customers, _ := fixtures()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListCustomers(gomock.Any()).Return(customers, nil)

	svc := export.NewService(ledger.NewService(repo))

	file, err := svc.Export(context.Background(), export.Options{
		Format:           export.FormatCSV,
		IncludeCustomers: true,
	}, time.Now())
	require.NoError(t, err)

	assert.NotContains(t, string(file.Data), "balance_after")
}

func TestService_Export_Validation(t *testing.T) {
	type testCase struct {
		name string
		opts export.Options
	}

	tests := []testCase{
		{
			name: "UnknownFormat",
			opts: export.Options{Format: "xml", IncludeCustomers: true},
		},
		{
			name: "NothingSelected",
			opts: export.Options{Format: export.FormatCSV},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := export.NewService(ledger.NewService(ledger.NewMockRepository(ctrl)))

			_, err := svc.Export(context.Background(), tt.opts, time.Now())

			var verr *ledger.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
