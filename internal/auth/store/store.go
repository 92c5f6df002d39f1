package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prabink/khaatabook/internal/auth"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetUser returns the single operator account. The row is seeded by the
// operator; the application never creates users.
func (s *Store) GetUser(ctx context.Context) (*auth.User, error) {
	query := `
		SELECT id, name, username, email, avatar_url, password_hash, created_at, updated_at
		FROM users
		ORDER BY created_at ASC
		LIMIT 1
	`

	var u auth.User

	var avatarURL sql.NullString

	err := s.db.QueryRowContext(ctx, query).Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &avatarURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	u.AvatarURL = avatarURL.String

	return &u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, hash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = (SELECT id FROM users ORDER BY created_at ASC LIMIT 1)
	`

	res, err := s.db.ExecContext(ctx, query, hash)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if affected == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}
