package shortener

import (
	"context"
	"errors"
	"time"
)

// Shortener creates short URLs with unique keys.
type Shortener struct {
	store Repository
	keys  *KeyGenerator
	now   func() time.Time
}

// NewShortener creates a new shortener backed by store.
func NewShortener(store Repository, keys *KeyGenerator) *Shortener {
	return &Shortener{
		store: store,
		keys:  keys,
		now:   time.Now,
	}
}

// Shorten normalizes rawURL and stores it under a fresh key.
// A nil owner creates a guest URL.
//
// The existence check and the insert are not atomic, so a conflict reported
// by the store is treated like a collision. Both count against one budget of
// MaxAttempts candidate keys.
func (s *Shortener) Shorten(ctx context.Context, rawURL string, owner *int64) (*ShortURL, error) {
	target, err := NormalizeTargetURL(rawURL)
	if err != nil {
		return nil, err
	}

	for range s.keys.MaxAttempts() {
		key, free, err := s.keys.candidate(ctx, s.store)
		if err != nil {
			return nil, err
		}

		if !free {
			continue
		}

		shortURL := &ShortURL{
			Key:       key,
			SecretKey: s.keys.SecretFor(key),
			TargetURL: target,
			IsActive:  true,
			IsGuest:   owner == nil,
			UserID:    owner,
			CreatedAt: s.now().UTC(),
		}

		err = s.store.Create(ctx, shortURL)
		if err == nil {
			return shortURL, nil
		}

		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
	}

	return nil, ErrKeySpaceExhausted
}
