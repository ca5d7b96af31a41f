package shortener

import (
	"context"
	"time"
)

// Visit is a single redirect traversal of a short URL.
type Visit struct {
	Key       Key
	IPAddress string
	UserAgent string
	VisitedAt time.Time
}

// VisitRecorder appends visits and counts them as clicks.
type VisitRecorder interface {
	// RecordVisit returns ErrNotFound when the key is unknown.
	RecordVisit(ctx context.Context, visit *Visit) error
}

// VisitLister reads back the visits of a short URL.
type VisitLister interface {
	// ListVisits returns visits oldest first, or ErrNotFound when the key is unknown.
	ListVisits(ctx context.Context, key Key) ([]Visit, error)
}
