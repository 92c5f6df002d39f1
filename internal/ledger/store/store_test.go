package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabink/khaatabook/internal/ledger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return New(db), mock
}

// Deleting a customer must remove their transactions in the same database
// transaction, under the customer's advisory lock.
func TestStore_DeleteCustomer_RemovesTransactions(t *testing.T) {
	s, mock := newMockStore(t)

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(customerLockKey(id)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE customer_id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteCustomer(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteCustomer_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(customerLockKey(id)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE customer_id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.DeleteCustomer(context.Background(), id)

	require.ErrorIs(t, err, ledger.ErrCustomerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateCustomer_DuplicateCode(t *testing.T) {
	s, mock := newMockStore(t)

	c := &ledger.Customer{
		ID:   uuid.New(),
		Code: "CUST-AA11BB",
		Name: "Ram Bahadur",
	}

	mock.ExpectExec("UPDATE customers").
		WithArgs(c.Code, c.Name, c.Phone, c.Address, c.CreditLimit, c.DefaultCreditDays, c.ID).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_code_key"})

	err := s.UpdateCustomer(context.Background(), c)

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "code", verr.Field)
}

func TestStore_CreateCustomer_DuplicateCode(t *testing.T) {
	s, mock := newMockStore(t)

	c := &ledger.Customer{
		ID:   uuid.New(),
		Code: "CUST-AA11BB",
		Name: "Ram Bahadur",
	}

	mock.ExpectQuery("INSERT INTO customers").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_code_key"})

	err := s.CreateCustomer(context.Background(), c)

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "code", verr.Field)
}
