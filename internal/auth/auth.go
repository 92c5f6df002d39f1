package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid session")
)

// User is the single operator account of the system.
type User struct {
	ID           uuid.UUID
	Name         string
	Username     string
	Email        string
	AvatarURL    string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Claims is the session token payload.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Session is a verified login: the refreshed user record plus the token's
// expiry.
type Session struct {
	User      *User
	ExpiresAt time.Time
}
