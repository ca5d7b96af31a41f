package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// Visits is an analytics.Store that appends a visitor row for every access event.
// Creation events carry nothing the urls table does not already hold, so they are only logged.
type Visits struct {
	*Noop

	recorder shortener.VisitRecorder
}

// NewVisits creates a visitor log writing through recorder.
func NewVisits(recorder shortener.VisitRecorder, logger *zap.Logger) *Visits {
	return &Visits{Noop: NewNoop(logger), recorder: recorder}
}

func (v *Visits) SaveURLAccessed(ctx context.Context, event *analytics.URLAccessedEvent) error {
	visit := &shortener.Visit{
		Key:       shortener.Key(event.Key),
		IPAddress: event.ClientIP,
		UserAgent: event.UserAgent,
		VisitedAt: event.AccessedAt,
	}

	if err := v.recorder.RecordVisit(ctx, visit); err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return fmt.Errorf("record visit for %q: %w", event.Key, messaging.ErrDrop)
		}

		return fmt.Errorf("record visit for %q: %w", event.Key, err)
	}

	return nil
}
