package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMapping returns the learned description whose pattern matches the
// input. Longer patterns win, then newer ones. Returns empty string when
// nothing matches.
func (s *Store) FindMapping(ctx context.Context, input string) (string, error) {
	query := `
		SELECT description
		FROM description_mappings
		WHERE $1 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var description string

	err := s.db.QueryRowContext(ctx, query, input).Scan(&description)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", fmt.Errorf("finding mapping: %w", err)
	}

	return description, nil
}

func (s *Store) CreateMapping(ctx context.Context, pattern, description string) error {
	query := `
		INSERT INTO description_mappings (pattern, description, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, pattern, description)
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}
