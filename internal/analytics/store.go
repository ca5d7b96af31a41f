package analytics

import "context"

// Store persists analytics events delivered by the consumers.
// Returning an error wrapping messaging.ErrDrop acknowledges an event that cannot be stored.
type Store interface {
	SaveURLCreated(ctx context.Context, event *URLCreatedEvent) error
	SaveURLAccessed(ctx context.Context, event *URLAccessedEvent) error
}
