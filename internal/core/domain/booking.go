package domain

import "time"

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingActive    BookingStatus = "ACTIVE"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingPending: {BookingActive, BookingCancelled},
	BookingActive:  {BookingCancelled},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingActive, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s BookingStatus) Terminal() bool { return len(validTransitions[s]) == 0 }

// Blocking reports whether a booking in this status occupies its place.
func (s BookingStatus) Blocking() bool { return s != BookingCancelled }

// Booking reserves a place for the half-open interval [StartTime, EndTime).
type Booking struct {
	ID         int64         `json:"id"`
	PlaceID    int64         `json:"placeId"`
	UserID     int64         `json:"userId"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    time.Time     `json:"endTime"`
	Status     BookingStatus `json:"status"`
	TotalPrice float64       `json:"totalPrice"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`

	// User is the requester; populated by listing queries only.
	User *User `json:"user,omitempty"`
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Adjacent intervals (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ValidRange reports whether end is strictly after start.
func ValidRange(start, end time.Time) bool { return end.After(start) }

// Price returns pricePerHour multiplied by the fractional number of hours in [start, end).
func Price(pricePerHour float64, start, end time.Time) float64 {
	return pricePerHour * end.Sub(start).Hours()
}

// DayWindow returns the half-open UTC window [00:00, next 00:00) of the calendar day containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

// BookingEventType names a booking lifecycle change.
type BookingEventType string

const (
	BookingCreatedEvent     BookingEventType = "booking.created"
	BookingAcceptedEvent    BookingEventType = "booking.accepted"
	BookingRejectedEvent    BookingEventType = "booking.rejected"
	BookingCancelledEvent   BookingEventType = "booking.cancelled"
	BookingRescheduledEvent BookingEventType = "booking.rescheduled"
)

// BookingEvent records a booking lifecycle change for audit and notification sinks.
type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  int64            `json:"bookingId"`
	PlaceID    int64            `json:"placeId"`
	UserID     int64            `json:"userId"`
	ActorID    int64            `json:"actorId"`
	Status     BookingStatus    `json:"status"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    time.Time        `json:"endTime"`
	TotalPrice float64          `json:"totalPrice"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// NewBookingEvent builds an event snapshot of b.
func NewBookingEvent(t BookingEventType, b *Booking, actorID int64, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       t,
		BookingID:  b.ID,
		PlaceID:    b.PlaceID,
		UserID:     b.UserID,
		ActorID:    actorID,
		Status:     b.Status,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		TotalPrice: b.TotalPrice,
		OccurredAt: at,
	}
}
