package shortener

import "time"

// Key is the short public identifier of a URL.
type Key string

// SecretKey is the owner-only identifier used for administrative actions.
type SecretKey string

// ShortURL represents a shortened URL entity.
type ShortURL struct {
	ID        int64
	Key       Key
	SecretKey SecretKey
	TargetURL string
	IsActive  bool
	Clicks    int64
	IsGuest   bool
	UserID    *int64 // nil for guest URLs
	CreatedAt time.Time
}
