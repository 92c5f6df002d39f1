package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	GetUser(ctx context.Context) (*User, error)
	UpdatePassword(ctx context.Context, hash string) error
}

// Service issues and validates the session cookie token for the single
// system user.
type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
}

func NewService(repo Repository, secret string, ttl time.Duration) *Service {
	return &Service{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Login checks the credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Session, error) {
	user, err := s.repo.GetUser(ctx)
	if err != nil {
		return "", nil, err
	}

	if user.Username != username {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	claims := &Claims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing session token: %w", err)
	}

	return token, &Session{User: user, ExpiresAt: expiresAt}, nil
}

// Verify parses and validates a session token.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Session validates a token and refreshes the user record from the store, so
// profile edits are visible without a new login.
func (s *Service) Session(ctx context.Context, token string) (*Session, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ChangePassword replaces the stored password hash after checking the
// current password. Callers should invalidate the session cookie afterwards.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	if next == "" {
		return errors.New("new password must not be empty")
	}

	user, err := s.repo.GetUser(ctx)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, string(hash))
}
