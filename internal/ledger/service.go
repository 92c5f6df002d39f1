package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error

	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	BeginMutation(ctx context.Context, customerID uuid.UUID) (MutationTx, error)
}

// MutationTx scopes a transaction mutation to one customer. Implementations
// must serialize concurrent mutations for the same customer (the Postgres
// store takes an advisory lock) and persist everything written through the
// tx atomically on Commit.
type MutationTx interface {
	Customer(ctx context.Context) (*Customer, error)
	Transactions(ctx context.Context) ([]*Transaction, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	SaveBalances(ctx context.Context, c *Customer, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Service implements the ledger mutation operations. Every transaction
// mutation runs inside a MutationTx: read the post-mutation history,
// recalculate balances, write everything back, commit.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateCustomerParams struct {
	Name              string
	Phone             string
	Address           string
	CreditLimit       int64
	DefaultCreditDays int
}

type UpdateCustomerParams struct {
	Code              *string
	Name              *string
	Phone             *string
	Address           *string
	CreditLimit       *int64
	DefaultCreditDays *int
}

type CreateTransactionParams struct {
	CustomerID  uuid.UUID
	Date        time.Time
	Type        Type
	Amount      int64
	Description string
	CreditDays  *int
}

type UpdateTransactionParams struct {
	CustomerID  *uuid.UUID // rejected when it differs from the owner
	Date        *time.Time
	Type        *Type
	Amount      *int64
	Description *string
	CreditDays  *int
}

type ListFilter struct {
	CustomerID *uuid.UUID
	Type       *Type
	StartDate  *time.Time
	EndDate    *time.Time
}

// CreateCustomer registers a new customer with a zero outstanding balance.
// The balance cannot be supplied; it only ever changes through transaction
// mutations.
func (s *Service) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	if params.CreditLimit < 0 {
		return nil, &ValidationError{Field: "credit_limit", Reason: "must not be negative"}
	}

	if params.DefaultCreditDays < 0 {
		return nil, &ValidationError{Field: "default_credit_days", Reason: "must not be negative"}
	}

	c := &Customer{
		ID:                 uuid.New(),
		Code:               newCustomerCode(),
		Name:               params.Name,
		Phone:              params.Phone,
		Address:            params.Address,
		CreditLimit:        params.CreditLimit,
		DefaultCreditDays:  params.DefaultCreditDays,
		OutstandingBalance: 0,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// UpdateCustomer merges the supplied profile fields. OutstandingBalance and
// CreatedAt are never written from this path.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (*Customer, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Code != nil {
		c.Code = *params.Code
	}

	if params.Name != nil {
		c.Name = *params.Name
	}

	if params.Phone != nil {
		c.Phone = *params.Phone
	}

	if params.Address != nil {
		c.Address = *params.Address
	}

	if params.CreditLimit != nil {
		c.CreditLimit = *params.CreditLimit
	}

	if params.DefaultCreditDays != nil {
		c.DefaultCreditDays = *params.DefaultCreditDays
	}

	if strings.TrimSpace(c.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	if c.CreditLimit < 0 {
		return nil, &ValidationError{Field: "credit_limit", Reason: "must not be negative"}
	}

	if c.DefaultCreditDays < 0 {
		return nil, &ValidationError{Field: "default_credit_days", Reason: "must not be negative"}
	}

	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteCustomer removes the customer and all of their transactions.
func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// AddTransaction validates and records a new transaction, then recalculates
// the owning customer's running balances. The returned transaction carries
// its final BalanceAfter.
func (s *Service) AddTransaction(ctx context.Context, params CreateTransactionParams) (*Transaction, error) {
	if !params.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", params.Type)}
	}

	if params.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	if params.Date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "must be set"}
	}

	if params.CreditDays != nil && *params.CreditDays < 0 {
		return nil, &ValidationError{Field: "credit_days", Reason: "must not be negative"}
	}

	mtx, err := s.repo.BeginMutation(ctx, params.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("begin mutation: %w", err)
	}
	defer mtx.Rollback()

	customer, err := mtx.Customer(ctx)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, &ValidationError{Field: "customer_id", Reason: "customer does not exist"}
		}

		return nil, err
	}

	creditDays := params.CreditDays
	if params.Type != TypeSale {
		creditDays = nil
	}

	tx := &Transaction{
		ID:          uuid.New(),
		CustomerID:  params.CustomerID,
		Date:        params.Date,
		Type:        params.Type,
		Amount:      params.Amount,
		Description: params.Description,
		CreditDays:  creditDays,
		DueDate:     DueDateFor(params.Type, params.Date, creditDays),
		Status:      StatusFor(params.Type),
	}
	if err := mtx.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	created, err := s.recalculateAndSave(ctx, mtx, customer, tx.ID)
	if err != nil {
		return nil, err
	}

	if err := mtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutation: %w", err)
	}

	return created, nil
}

// UpdateTransaction applies field changes to an existing transaction,
// re-derives its due date and status, and recalculates the owning customer's
// balances. Moving a transaction to a different customer is rejected.
func (s *Service) UpdateTransaction(ctx context.Context, id uuid.UUID, params UpdateTransactionParams) (*Transaction, error) {
	existing, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.CustomerID != nil && *params.CustomerID != existing.CustomerID {
		return nil, &ValidationError{Field: "customer_id", Reason: "transactions cannot move between customers"}
	}

	mtx, err := s.repo.BeginMutation(ctx, existing.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("begin mutation: %w", err)
	}
	defer mtx.Rollback()

	txs, err := mtx.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	var target *Transaction

	for _, tx := range txs {
		if tx.ID == id {
			target = tx
			break
		}
	}

	if target == nil {
		return nil, ErrTransactionNotFound
	}

	if params.Date != nil {
		target.Date = *params.Date
	}

	if params.Type != nil {
		target.Type = *params.Type
	}

	if params.Amount != nil {
		target.Amount = *params.Amount
	}

	if params.Description != nil {
		target.Description = *params.Description
	}

	if params.CreditDays != nil {
		target.CreditDays = params.CreditDays
	}

	if !target.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", target.Type)}
	}

	if target.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	if target.CreditDays != nil && *target.CreditDays < 0 {
		return nil, &ValidationError{Field: "credit_days", Reason: "must not be negative"}
	}

	if target.Type != TypeSale {
		target.CreditDays = nil
	}

	// Re-derive even when the inputs are unchanged so the stored values stay
	// self-consistent with the current date, type and credit days.
	target.DueDate = DueDateFor(target.Type, target.Date, target.CreditDays)
	target.Status = StatusFor(target.Type)

	if err := mtx.UpdateTransaction(ctx, target); err != nil {
		return nil, err
	}

	customer, err := mtx.Customer(ctx)
	if err != nil {
		return nil, err
	}

	customer.OutstandingBalance = Recalculate(txs)
	if err := mtx.SaveBalances(ctx, customer, txs); err != nil {
		return nil, err
	}

	if err := mtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutation: %w", err)
	}

	return target, nil
}

// DeleteTransaction removes a transaction and recalculates the former
// owner's remaining history.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	mtx, err := s.repo.BeginMutation(ctx, existing.CustomerID)
	if err != nil {
		return fmt.Errorf("begin mutation: %w", err)
	}
	defer mtx.Rollback()

	if err := mtx.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	customer, err := mtx.Customer(ctx)
	if err != nil {
		return err
	}

	if _, err := s.recalculateAndSave(ctx, mtx, customer, uuid.Nil); err != nil {
		return err
	}

	if err := mtx.Commit(); err != nil {
		return fmt.Errorf("commit mutation: %w", err)
	}

	return nil
}

// recalculateAndSave reloads the customer's post-mutation history, replays
// it, and persists the recomputed balances. When wantID is set, the matching
// transaction is returned with its final running balance.
func (s *Service) recalculateAndSave(ctx context.Context, mtx MutationTx, customer *Customer, wantID uuid.UUID) (*Transaction, error) {
	txs, err := mtx.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	customer.OutstandingBalance = Recalculate(txs)
	if err := mtx.SaveBalances(ctx, customer, txs); err != nil {
		return nil, err
	}

	if wantID == uuid.Nil {
		return nil, nil
	}

	for _, tx := range txs {
		if tx.ID == wantID {
			return tx, nil
		}
	}

	return nil, ErrTransactionNotFound
}

func newCustomerCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))

	return "CUST-" + suffix[:6]
}
