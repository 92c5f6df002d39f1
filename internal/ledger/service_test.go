package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/prabink/khaatabook/internal/ledger"
)

func TestService_CreateCustomer(t *testing.T) {
	type testCase struct {
		name      string
		params    ledger.CreateCustomerParams
		setupMock func(m *ledger.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			params: ledger.CreateCustomerParams{
				Name:              "Aarav Sharma",
				Phone:             "9876543210",
				Address:           "123 Main St, Kathmandu",
				CreditLimit:       5000000,
				DefaultCreditDays: 30,
			},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateCustomer(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *ledger.Customer) error {
						c.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name:    "EmptyName",
			params:  ledger.CreateCustomerParams{Name: "   "},
			wantErr: true,
		},
		{
			name:    "NegativeCreditLimit",
			params:  ledger.CreateCustomerParams{Name: "Bina Rai", CreditLimit: -1},
			wantErr: true,
		},
		{
			name:    "NegativeCreditDays",
			params:  ledger.CreateCustomerParams{Name: "Bina Rai", DefaultCreditDays: -5},
			wantErr: true,
		},
		{
			name:   "RepoError",
			params: ledger.CreateCustomerParams{Name: "Chandan Gupta"},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateCustomer(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			got, err := svc.CreateCustomer(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Regexp(t, `^CUST-[0-9A-F]{6}$`, got.Code)
			assert.Zero(t, got.OutstandingBalance)
		})
	}
}

func TestService_UpdateCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	id := uuid.New()
	created := time.Date(2023, 1, 15, 10, 0, 0, 0, time.UTC)

	repo.EXPECT().GetCustomer(gomock.Any(), id).Return(&ledger.Customer{
		ID:                 id,
		Code:               "CUST-A1B2C3",
		Name:               "Aarav Sharma",
		CreditLimit:        5000000,
		OutstandingBalance: 1550000,
		CreatedAt:          created,
	}, nil)
	repo.EXPECT().
		UpdateCustomer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *ledger.Customer) error {
			// Profile edits never touch the derived balance or creation time.
			assert.Equal(t, int64(1550000), c.OutstandingBalance)
			assert.Equal(t, created, c.CreatedAt)
			return nil
		})

	got, err := svc.UpdateCustomer(context.Background(), id, ledger.UpdateCustomerParams{
		Name:  new("Aarav S."),
		Phone: new("9800000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aarav S.", got.Name)
	assert.Equal(t, "9800000000", got.Phone)
	assert.Equal(t, "CUST-A1B2C3", got.Code)
}

func TestService_UpdateCustomer_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	id := uuid.New()
	repo.EXPECT().GetCustomer(gomock.Any(), id).Return(nil, ledger.ErrCustomerNotFound)

	_, err := svc.UpdateCustomer(context.Background(), id, ledger.UpdateCustomerParams{})
	assert.ErrorIs(t, err, ledger.ErrCustomerNotFound)
}

func TestService_AddTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	mtx := ledger.NewMockMutationTx(ctrl)
	svc := ledger.NewService(repo)

	customerID := uuid.New()
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	thirty := 30

	existing := &ledger.Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:       ledger.TypeSale,
		Amount:     10000,
		Status:     ledger.StatusDue,
	}

	var createdID uuid.UUID

	repo.EXPECT().BeginMutation(gomock.Any(), customerID).Return(mtx, nil)
	mtx.EXPECT().Customer(gomock.Any()).Return(&ledger.Customer{ID: customerID}, nil)
	mtx.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			assert.Equal(t, ledger.StatusDue, tx.Status)
			require.NotNil(t, tx.DueDate)
			assert.Equal(t, date.AddDate(0, 0, 30), *tx.DueDate)
			createdID = tx.ID
			tx.CreatedAt = time.Now()
			return nil
		})
	mtx.EXPECT().
		Transactions(gomock.Any()).
		DoAndReturn(func(context.Context) ([]*ledger.Transaction, error) {
			created := &ledger.Transaction{
				ID:         createdID,
				CustomerID: customerID,
				Date:       date,
				Type:       ledger.TypeSale,
				Amount:     2500,
				Status:     ledger.StatusDue,
			}
			return []*ledger.Transaction{existing, created}, nil
		})
	mtx.EXPECT().
		SaveBalances(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *ledger.Customer, txs []*ledger.Transaction) error {
			assert.Equal(t, int64(12500), c.OutstandingBalance)
			assert.Len(t, txs, 2)
			return nil
		})
	mtx.EXPECT().Commit().Return(nil)
	mtx.EXPECT().Rollback().Return(nil)

	got, err := svc.AddTransaction(context.Background(), ledger.CreateTransactionParams{
		CustomerID:  customerID,
		Date:        date,
		Type:        ledger.TypeSale,
		Amount:      2500,
		Description: "Follow-up order",
		CreditDays:  &thirty,
	})
	require.NoError(t, err)
	assert.Equal(t, createdID, got.ID)
	assert.Equal(t, int64(12500), got.BalanceAfter)
}

func TestService_AddTransaction_Validation(t *testing.T) {
	type testCase struct {
		name   string
		params ledger.CreateTransactionParams
	}

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []testCase{
		{
			name:   "ZeroAmount",
			params: ledger.CreateTransactionParams{CustomerID: uuid.New(), Date: date, Type: ledger.TypeSale, Amount: 0},
		},
		{
			name:   "NegativeAmount",
			params: ledger.CreateTransactionParams{CustomerID: uuid.New(), Date: date, Type: ledger.TypeSale, Amount: -500},
		},
		{
			name:   "UnknownType",
			params: ledger.CreateTransactionParams{CustomerID: uuid.New(), Date: date, Type: "refund", Amount: 500},
		},
		{
			name:   "ZeroDate",
			params: ledger.CreateTransactionParams{CustomerID: uuid.New(), Type: ledger.TypeSale, Amount: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No repository expectations: invalid input must fail before any
			// store interaction.
			repo := ledger.NewMockRepository(ctrl)
			svc := ledger.NewService(repo)

			_, err := svc.AddTransaction(context.Background(), tt.params)

			var ve *ledger.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestService_AddTransaction_UnknownCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	mtx := ledger.NewMockMutationTx(ctrl)
	svc := ledger.NewService(repo)

	customerID := uuid.New()
	repo.EXPECT().BeginMutation(gomock.Any(), customerID).Return(mtx, nil)
	mtx.EXPECT().Customer(gomock.Any()).Return(nil, ledger.ErrCustomerNotFound)
	mtx.EXPECT().Rollback().Return(nil)

	_, err := svc.AddTransaction(context.Background(), ledger.CreateTransactionParams{
		CustomerID: customerID,
		Date:       time.Now(),
		Type:       ledger.TypePayment,
		Amount:     100,
	})

	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "customer_id", ve.Field)
}

func TestService_UpdateTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	mtx := ledger.NewMockMutationTx(ctrl)
	svc := ledger.NewService(repo)

	customerID := uuid.New()
	txID := uuid.New()

	a := &ledger.Transaction{
		ID:         txID,
		CustomerID: customerID,
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:       ledger.TypeSale,
		Amount:     10000,
		Status:     ledger.StatusDue,
	}
	b := &ledger.Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Date:       time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Type:       ledger.TypePayment,
		Amount:     4000,
		Status:     ledger.StatusPaid,
	}

	repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(a, nil)
	repo.EXPECT().BeginMutation(gomock.Any(), customerID).Return(mtx, nil)
	mtx.EXPECT().Transactions(gomock.Any()).Return([]*ledger.Transaction{a, b}, nil)
	mtx.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			assert.Equal(t, txID, tx.ID)
			assert.Equal(t, int64(5000), tx.Amount)
			return nil
		})
	mtx.EXPECT().Customer(gomock.Any()).Return(&ledger.Customer{ID: customerID}, nil)
	mtx.EXPECT().
		SaveBalances(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *ledger.Customer, txs []*ledger.Transaction) error {
			// Shrinking the first sale shifts the payment's balance too.
			assert.Equal(t, int64(1000), c.OutstandingBalance)
			assert.Equal(t, int64(5000), a.BalanceAfter)
			assert.Equal(t, int64(1000), b.BalanceAfter)
			return nil
		})
	mtx.EXPECT().Commit().Return(nil)
	mtx.EXPECT().Rollback().Return(nil)

	got, err := svc.UpdateTransaction(context.Background(), txID, ledger.UpdateTransactionParams{
		Amount: new(int64(5000)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.BalanceAfter)
}

func TestService_UpdateTransaction_RejectsReassignment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	txID := uuid.New()
	owner := uuid.New()
	other := uuid.New()

	repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(&ledger.Transaction{
		ID:         txID,
		CustomerID: owner,
		Type:       ledger.TypeSale,
		Amount:     100,
	}, nil)

	_, err := svc.UpdateTransaction(context.Background(), txID, ledger.UpdateTransactionParams{
		CustomerID: &other,
	})

	var ve *ledger.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestService_UpdateTransaction_TypeFlipClearsDueDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	mtx := ledger.NewMockMutationTx(ctrl)
	svc := ledger.NewService(repo)

	customerID := uuid.New()
	txID := uuid.New()
	thirty := 30

	sale := &ledger.Transaction{
		ID:         txID,
		CustomerID: customerID,
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:       ledger.TypeSale,
		Amount:     10000,
		CreditDays: &thirty,
		DueDate:    new(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)),
		Status:     ledger.StatusDue,
	}

	repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(sale, nil)
	repo.EXPECT().BeginMutation(gomock.Any(), customerID).Return(mtx, nil)
	mtx.EXPECT().Transactions(gomock.Any()).Return([]*ledger.Transaction{sale}, nil)
	mtx.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	mtx.EXPECT().Customer(gomock.Any()).Return(&ledger.Customer{ID: customerID}, nil)
	mtx.EXPECT().SaveBalances(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mtx.EXPECT().Commit().Return(nil)
	mtx.EXPECT().Rollback().Return(nil)

	got, err := svc.UpdateTransaction(context.Background(), txID, ledger.UpdateTransactionParams{
		Type: new(ledger.TypePayment),
	})
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.CreditDays)
	assert.Equal(t, ledger.StatusPaid, got.Status)
	assert.Equal(t, int64(-10000), got.BalanceAfter)
}

func TestService_UpdateTransaction_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	id := uuid.New()
	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, ledger.ErrTransactionNotFound)

	_, err := svc.UpdateTransaction(context.Background(), id, ledger.UpdateTransactionParams{})
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestService_DeleteTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	mtx := ledger.NewMockMutationTx(ctrl)
	svc := ledger.NewService(repo)

	customerID := uuid.New()
	txID := uuid.New()

	a := &ledger.Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:       ledger.TypeSale,
		Amount:     10000,
	}
	c := &ledger.Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Date:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Type:       ledger.TypeSale,
		Amount:     2000,
	}

	repo.EXPECT().GetTransaction(gomock.Any(), txID).Return(&ledger.Transaction{
		ID:         txID,
		CustomerID: customerID,
		Type:       ledger.TypePayment,
		Amount:     4000,
	}, nil)
	repo.EXPECT().BeginMutation(gomock.Any(), customerID).Return(mtx, nil)
	mtx.EXPECT().DeleteTransaction(gomock.Any(), txID).Return(nil)
	mtx.EXPECT().Customer(gomock.Any()).Return(&ledger.Customer{ID: customerID}, nil)
	mtx.EXPECT().Transactions(gomock.Any()).Return([]*ledger.Transaction{a, c}, nil)
	mtx.EXPECT().
		SaveBalances(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cust *ledger.Customer, txs []*ledger.Transaction) error {
			assert.Equal(t, int64(12000), cust.OutstandingBalance)
			assert.Equal(t, int64(10000), a.BalanceAfter)
			assert.Equal(t, int64(12000), c.BalanceAfter)
			return nil
		})
	mtx.EXPECT().Commit().Return(nil)
	mtx.EXPECT().Rollback().Return(nil)

	err := svc.DeleteTransaction(context.Background(), txID)
	require.NoError(t, err)
}

func TestService_DeleteTransaction_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	id := uuid.New()
	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, ledger.ErrTransactionNotFound)

	err := svc.DeleteTransaction(context.Background(), id)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestService_DeleteCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	id := uuid.New()
	repo.EXPECT().DeleteCustomer(gomock.Any(), id).Return(nil)
	require.NoError(t, svc.DeleteCustomer(context.Background(), id))

	repo.EXPECT().DeleteCustomer(gomock.Any(), id).Return(ledger.ErrCustomerNotFound)
	assert.ErrorIs(t, svc.DeleteCustomer(context.Background(), id), ledger.ErrCustomerNotFound)
}
