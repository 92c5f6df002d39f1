package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/prabink/khaatabook/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectCustomerColumns = `
	c.id, c.code, c.name, c.phone, c.address, c.credit_limit,
	c.outstanding_balance, c.default_credit_days, c.created_at, c.updated_at
`

const selectTransactionColumns = `
	t.id, t.customer_id, t.date, t.type, t.amount, t.description,
	t.credit_days, t.due_date, t.balance_after, t.status, t.created_at, t.updated_at
`

// Transactions are always read ordered by date, then creation time, so the
// recalculation engine's stable sort sees equal dates in insertion order.
const transactionOrder = " ORDER BY t.date ASC, t.created_at ASC"

func scanCustomer(s scanner) (*ledger.Customer, error) {
	var c ledger.Customer

	if err := s.Scan(
		&c.ID, &c.Code, &c.Name, &c.Phone, &c.Address, &c.CreditLimit,
		&c.OutstandingBalance, &c.DefaultCreditDays, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var typeStr, statusStr string

	var creditDays sql.NullInt64

	if err := s.Scan(
		&tx.ID, &tx.CustomerID, &tx.Date, &typeStr, &tx.Amount, &tx.Description,
		&creditDays, &tx.DueDate, &tx.BalanceAfter, &statusStr, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = ledger.Type(typeStr)
	tx.Status = ledger.Status(statusStr)

	if creditDays.Valid {
		days := int(creditDays.Int64)
		tx.CreditDays = &days
	}

	return &tx, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *ledger.Customer) error {
	query := `
		INSERT INTO customers (id, code, name, phone, address, credit_limit, outstanding_balance, default_credit_days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.ID,
		c.Code,
		c.Name,
		c.Phone,
		c.Address,
		c.CreditLimit,
		c.OutstandingBalance,
		c.DefaultCreditDays,
	).Scan(&c.CreatedAt)
	if err != nil {
		if isDuplicateCode(err) {
			return &ledger.ValidationError{Field: "code", Reason: "already in use"}
		}

		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

// isDuplicateCode reports whether err is the unique-index violation raised
// when a customer code is already taken (SQLSTATE 23505).
func isDuplicateCode(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*ledger.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers c WHERE c.id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrCustomerNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]*ledger.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers c ORDER BY c.name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*ledger.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}

// UpdateCustomer writes the profile fields only. The outstanding balance is
// owned by SaveBalances and never touched here.
func (s *Store) UpdateCustomer(ctx context.Context, c *ledger.Customer) error {
	query := `
		UPDATE customers
		SET code = $1, name = $2, phone = $3, address = $4, credit_limit = $5, default_credit_days = $6, updated_at = NOW()
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		c.Code,
		c.Name,
		c.Phone,
		c.Address,
		c.CreditLimit,
		c.DefaultCreditDays,
		c.ID,
	)
	if err != nil {
		if isDuplicateCode(err) {
			return &ledger.ValidationError{Field: "code", Reason: "already in use"}
		}

		return fmt.Errorf("updating customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	if affected == 0 {
		return ledger.ErrCustomerNotFound
	}

	return nil
}

// DeleteCustomer removes the customer and cascades to their transactions in
// a single database transaction.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete tx: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", customerLockKey(id)); err != nil {
		return fmt.Errorf("acquiring customer lock: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE customer_id = $1`, id); err != nil {
		return fmt.Errorf("deleting customer transactions: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	if affected == 0 {
		return ledger.ErrCustomerNotFound
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrTransactionNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND t.customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += transactionOrder

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

// customerLockKey maps a customer id onto an advisory lock key so mutations
// for the same customer serialize while different customers proceed freely.
func customerLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("ledger:"))
	h.Write([]byte(id.String()))

	return int64(h.Sum64())
}

type mutationTx struct {
	tx         *sql.Tx
	customerID uuid.UUID
}

// BeginMutation opens the per-customer critical section required for balance
// recalculation: a database transaction holding an advisory lock for the
// customer. Everything written through the returned MutationTx becomes
// visible atomically on Commit.
func (s *Store) BeginMutation(ctx context.Context, customerID uuid.UUID) (ledger.MutationTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning mutation tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", customerLockKey(customerID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring customer lock: %w", err)
	}

	return &mutationTx{tx: dbTx, customerID: customerID}, nil
}

func (m *mutationTx) Commit() error   { return m.tx.Commit() }
func (m *mutationTx) Rollback() error { return m.tx.Rollback() }

func (m *mutationTx) Customer(ctx context.Context) (*ledger.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers c WHERE c.id = $1`

	c, err := scanCustomer(m.tx.QueryRowContext(ctx, query, m.customerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrCustomerNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (m *mutationTx) Transactions(ctx context.Context) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.customer_id = $1` + transactionOrder

	rows, err := m.tx.QueryContext(ctx, query, m.customerID)
	if err != nil {
		return nil, fmt.Errorf("listing customer transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (m *mutationTx) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (id, customer_id, date, type, amount, description, credit_days, due_date, balance_after, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`

	err := m.tx.QueryRowContext(ctx, query,
		tx.ID,
		tx.CustomerID,
		tx.Date,
		tx.Type,
		tx.Amount,
		tx.Description,
		creditDaysValue(tx.CreditDays),
		tx.DueDate,
		tx.BalanceAfter,
		tx.Status,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (m *mutationTx) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $1, type = $2, amount = $3, description = $4, credit_days = $5, due_date = $6, status = $7, updated_at = NOW()
		WHERE id = $8
	`

	_, err := m.tx.ExecContext(ctx, query,
		tx.Date,
		tx.Type,
		tx.Amount,
		tx.Description,
		creditDaysValue(tx.CreditDays),
		tx.DueDate,
		tx.Status,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (m *mutationTx) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := m.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if affected == 0 {
		return ledger.ErrTransactionNotFound
	}

	return nil
}

// SaveBalances persists the recalculation output: the customer's outstanding
// balance and every transaction's running balance, all inside the mutation's
// database transaction.
func (m *mutationTx) SaveBalances(ctx context.Context, c *ledger.Customer, txs []*ledger.Transaction) error {
	query := `UPDATE customers SET outstanding_balance = $1, updated_at = NOW() WHERE id = $2`

	if _, err := m.tx.ExecContext(ctx, query, c.OutstandingBalance, c.ID); err != nil {
		return fmt.Errorf("saving customer balance: %w", err)
	}

	for _, tx := range txs {
		if _, err := m.tx.ExecContext(ctx, `UPDATE transactions SET balance_after = $1 WHERE id = $2`, tx.BalanceAfter, tx.ID); err != nil {
			return fmt.Errorf("saving transaction balance: %w", err)
		}
	}

	return nil
}

func creditDaysValue(days *int) sql.NullInt64 {
	if days == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(*days), Valid: true}
}
