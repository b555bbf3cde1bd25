package ports

import (
	"context"
	"time"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// EventPublisher hands booking lifecycle events to asynchronous sinks.
// Publishing must not fail the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent)
}

// EventHandler is one sink of booking events (audit log, message bus, notifications).
type EventHandler interface {
	Name() string
	Handle(ctx context.Context, event domain.BookingEvent) error
}

// AuditLog stores and reads the booking event trail.
type AuditLog interface {
	Insert(ctx context.Context, event domain.BookingEvent) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingEvent, error)
}

// IdempotencyStore remembers which booking an Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID int64, key string) (bookingID int64, found bool, err error)
	Remember(ctx context.Context, userID int64, key string, bookingID int64, ttl time.Duration) error
}
