package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
)

// User is a registered account.
type User struct {
	ID             int64
	Email          string
	Username       string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
}

// Repository defines the storage operations for users.
type Repository interface {
	// Create persists user and fills in its ID.
	// Returns ErrEmailTaken or ErrUsernameTaken on uniqueness violations.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// SetActive returns ErrNotFound when no user has id.
	SetActive(ctx context.Context, id int64, active bool) error
}
