package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prabink/khaatabook/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=suggest
type Repository interface {
	FindMapping(ctx context.Context, input string) (string, error)
	CreateMapping(ctx context.Context, pattern, description string) error
}

// Input describes the transaction being drafted.
type Input struct {
	Type                ledger.Type
	Amount              int64
	CustomerName        string
	PreviousDescription string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns a description for a transaction being drafted. Learned
// mappings take precedence; otherwise a description is composed from the
// transaction type, amount and customer name.
func (s *Service) Suggest(ctx context.Context, input Input) (string, error) {
	if prev := strings.TrimSpace(input.PreviousDescription); prev != "" {
		learned, err := s.repo.FindMapping(ctx, prev)
		if err != nil {
			return "", fmt.Errorf("looking up mapping: %w", err)
		}

		if learned != "" {
			return learned, nil
		}
	}

	return compose(input), nil
}

// Learn remembers that drafts matching pattern should be described as
// description from now on.
func (s *Service) Learn(ctx context.Context, pattern, description string) error {
	pattern = strings.TrimSpace(pattern)
	description = strings.TrimSpace(description)

	if pattern == "" || description == "" {
		return &ledger.ValidationError{Field: "pattern", Reason: "pattern and description must not be empty"}
	}

	return s.repo.CreateMapping(ctx, pattern, description)
}

func compose(input Input) string {
	amount := decimal.NewFromInt(input.Amount).Div(decimal.NewFromInt(100)).StringFixed(2)

	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = "customer"
	}

	if input.Type == ledger.TypePayment {
		return fmt.Sprintf("Payment of %s received from %s", amount, name)
	}

	return fmt.Sprintf("Credit sale of %s to %s", amount, name)
}
