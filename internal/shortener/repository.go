package shortener

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no active URL matches the lookup.
	ErrNotFound = errors.New("url not found")
	// ErrConflict is returned when a key or secret key is already stored.
	ErrConflict = errors.New("url key already exists")
	// ErrInvalidURL is returned when the target is not a well-formed URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrKeySpaceExhausted is returned when no free key was found within the attempt budget.
	ErrKeySpaceExhausted = errors.New("key space exhausted")
)

// Repository defines the storage operations for short URLs.
type Repository interface {
	// Create persists a new short URL and fills in its ID and CreatedAt.
	// Returns ErrConflict when the key or secret key is taken.
	Create(ctx context.Context, shortURL *ShortURL) error

	// KeyExists reports whether any URL, active or not, uses the key.
	KeyExists(ctx context.Context, key Key) (bool, error)

	// GetActiveByKey returns ErrNotFound for unknown and deactivated keys.
	GetActiveByKey(ctx context.Context, key Key) (*ShortURL, error)

	GetBySecretKey(ctx context.Context, secret SecretKey) (*ShortURL, error)
	ListByOwner(ctx context.Context, userID int64) ([]*ShortURL, error)

	// Deactivate clears the active flag. Returns ErrNotFound for unknown secrets.
	Deactivate(ctx context.Context, secret SecretKey) error
}
