package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prabink/khaatabook/internal/ledger"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Options selects what goes into the export file.
type Options struct {
	Format              Format
	IncludeCustomers    bool
	IncludeTransactions bool
}

// File is a rendered export ready to be sent to the client.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service renders customer and transaction data as downloadable files.
type Service struct {
	ledger *ledger.Service
}

func NewService(ledgerService *ledger.Service) *Service {
	return &Service{ledger: ledgerService}
}

// Export renders the selected data sets in the requested format. At least one
// data set must be selected.
func (s *Service) Export(ctx context.Context, opts Options, now time.Time) (*File, error) {
	if opts.Format != FormatCSV && opts.Format != FormatJSON {
		return nil, &ledger.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", opts.Format)}
	}

	if !opts.IncludeCustomers && !opts.IncludeTransactions {
		return nil, &ledger.ValidationError{Field: "include", Reason: "select at least one data set"}
	}

	var (
		customers    []*ledger.Customer
		transactions []*ledger.Transaction
		err          error
	)

	if opts.IncludeCustomers {
		customers, err = s.ledger.ListCustomers(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing customers: %w", err)
		}
	}

	if opts.IncludeTransactions {
		transactions, err = s.ledger.ListTransactions(ctx, ledger.ListFilter{})
		if err != nil {
			return nil, fmt.Errorf("listing transactions: %w", err)
		}
	}

	var (
		data        []byte
		contentType string
	)

	switch opts.Format {
	case FormatJSON:
		data, err = renderJSON(opts, customers, transactions)
		contentType = "application/json"
	case FormatCSV:
		data, err = renderCSV(opts, customers, transactions)
		contentType = "text/csv"
	}

	if err != nil {
		return nil, err
	}

	return &File{
		Name:        fmt.Sprintf("khaatabook_export_%s.%s", now.UTC().Format("20060102_150405"), opts.Format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

type customerRecord struct {
	ID                 string `json:"id"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	CreditLimit        string `json:"credit_limit"`
	OutstandingBalance string `json:"outstanding_balance"`
	DefaultCreditDays  int    `json:"default_credit_days"`
}

type transactionRecord struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	DueDate      string `json:"due_date,omitempty"`
	BalanceAfter string `json:"balance_after"`
	Status       string `json:"status"`
}

func customerRecordFor(c *ledger.Customer) customerRecord {
	return customerRecord{
		ID:                 c.ID.String(),
		Code:               c.Code,
		Name:               c.Name,
		Phone:              c.Phone,
		Address:            c.Address,
		CreditLimit:        money(c.CreditLimit),
		OutstandingBalance: money(c.OutstandingBalance),
		DefaultCreditDays:  c.DefaultCreditDays,
	}
}

func transactionRecordFor(t *ledger.Transaction) transactionRecord {
	r := transactionRecord{
		ID:           t.ID.String(),
		CustomerID:   t.CustomerID.String(),
		Date:         t.Date.Format("2006-01-02"),
		Type:         string(t.Type),
		Amount:       money(t.Amount),
		Description:  t.Description,
		BalanceAfter: money(t.BalanceAfter),
		Status:       string(t.Status),
	}
	if t.DueDate != nil {
		r.DueDate = t.DueDate.Format("2006-01-02")
	}

	return r
}

func renderJSON(opts Options, customers []*ledger.Customer, transactions []*ledger.Transaction) ([]byte, error) {
	payload := struct {
		Customers    []customerRecord    `json:"customers,omitempty"`
		Transactions []transactionRecord `json:"transactions,omitempty"`
	}{}

	if opts.IncludeCustomers {
		payload.Customers = make([]customerRecord, 0, len(customers))
		for _, c := range customers {
			payload.Customers = append(payload.Customers, customerRecordFor(c))
		}
	}

	if opts.IncludeTransactions {
		payload.Transactions = make([]transactionRecord, 0, len(transactions))
		for _, t := range transactions {
			payload.Transactions = append(payload.Transactions, transactionRecordFor(t))
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}

	return data, nil
}

func renderCSV(opts Options, customers []*ledger.Customer, transactions []*ledger.Transaction) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if opts.IncludeCustomers {
		rows := [][]string{{"id", "code", "name", "phone", "address", "credit_limit", "outstanding_balance", "default_credit_days"}}

		for _, c := range customers {
			r := customerRecordFor(c)
			rows = append(rows, []string{
				r.ID, r.Code, r.Name, r.Phone, r.Address,
				r.CreditLimit, r.OutstandingBalance, strconv.Itoa(r.DefaultCreditDays),
			})
		}

		if err := w.WriteAll(rows); err != nil {
			return nil, fmt.Errorf("writing customers: %w", err)
		}
	}

	if opts.IncludeCustomers && opts.IncludeTransactions {
		buf.WriteString("\n")
	}

	if opts.IncludeTransactions {
		rows := [][]string{{"id", "customer_id", "date", "type", "amount", "description", "due_date", "balance_after", "status"}}

		for _, t := range transactions {
			r := transactionRecordFor(t)
			rows = append(rows, []string{
				r.ID, r.CustomerID, r.Date, r.Type, r.Amount,
				r.Description, r.DueDate, r.BalanceAfter, r.Status,
			})
		}

		if err := w.WriteAll(rows); err != nil {
			return nil, fmt.Errorf("writing transactions: %w", err)
		}
	}

	return buf.Bytes(), nil
}

func money(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
