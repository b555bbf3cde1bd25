package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

// threeCaseOverlap is the enumerated form: the existing booking covers the new
// start, covers the new end, or is contained in the new interval.
func threeCaseOverlap(exStart, exEnd, newStart, newEnd time.Time) bool {
	coversStart := !exStart.After(newStart) && exEnd.After(newStart)
	coversEnd := exStart.Before(newEnd) && !exEnd.Before(newEnd)
	contained := !exStart.Before(newStart) && !exEnd.After(newEnd)
	return coversStart || coversEnd || contained
}

func TestOverlaps(t *testing.T) {
	exStart, exEnd := at("10:00"), at("12:00")

	tests := []struct {
		name     string
		start    string
		end      string
		conflict bool
	}{
		{"left overlap", "11:00", "13:00", true},
		{"right overlap", "09:00", "11:00", true},
		{"containment", "10:30", "11:30", true},
		{"covers existing", "09:00", "13:00", true},
		{"identical", "10:00", "12:00", true},
		{"adjacent after", "12:00", "13:00", false},
		{"adjacent before", "08:00", "10:00", false},
		{"disjoint", "14:00", "15:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(exStart, exEnd, at(tt.start), at(tt.end))
			assert.Equal(t, tt.conflict, got)
			assert.Equal(t, threeCaseOverlap(exStart, exEnd, at(tt.start), at(tt.end)), got,
				"single test must agree with the enumerated sub-cases")
			assert.Equal(t, got, Overlaps(at(tt.start), at(tt.end), exStart, exEnd), "overlap is symmetric")
		})
	}
}

func TestPrice(t *testing.T) {
	assert.Equal(t, 250.0, Price(100, at("10:00"), at("12:30")))
	assert.Equal(t, 25.0, Price(100, at("10:00"), at("10:15")))
	assert.Equal(t, 0.0, Price(0, at("10:00"), at("12:00")))
}

func TestValidRange(t *testing.T) {
	assert.True(t, ValidRange(at("10:00"), at("10:01")))
	assert.False(t, ValidRange(at("10:00"), at("10:00")))
	assert.False(t, ValidRange(at("11:00"), at("10:00")))
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransitionTo(BookingActive))
	assert.True(t, BookingPending.CanTransitionTo(BookingCancelled))
	assert.True(t, BookingActive.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingActive.CanTransitionTo(BookingPending))
	assert.False(t, BookingCancelled.CanTransitionTo(BookingActive))
	assert.False(t, BookingCompleted.CanTransitionTo(BookingCancelled))

	assert.True(t, BookingCancelled.Terminal())
	assert.True(t, BookingCompleted.Terminal())
	assert.False(t, BookingPending.Terminal())

	assert.False(t, BookingCancelled.Blocking())
	assert.True(t, BookingPending.Blocking())
	assert.True(t, BookingCompleted.Blocking())
}

func TestDayWindow(t *testing.T) {
	from, to := DayWindow(time.Date(2025, 3, 10, 17, 45, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), to)

	// A booking ending exactly at midnight does not touch the next day.
	assert.False(t, Overlaps(from.Add(-2*time.Hour), from, from, to))
	assert.True(t, Overlaps(at("23:00"), at("23:30"), from, to))
	assert.False(t, Overlaps(to, to.Add(time.Hour), from, to))
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrBookingOverlap, ErrConflict))
	assert.Equal(t, ErrNotFound, KindOf(ErrPlaceNotFound))
	assert.Equal(t, ErrInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "place already booked for requested period", ErrBookingOverlap.Error())

	var de *Error
	assert.True(t, errors.As(ErrUserExists, &de))
	assert.Equal(t, ErrAlreadyExists, de.Kind)
}

func TestRole(t *testing.T) {
	assert.True(t, RoleManager.Valid())
	assert.False(t, Role("ROOT").Valid())
	r, ok := RoleByID(RoleSuperAdmin.ID())
	assert.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, r)
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleManager.IsAdmin())
}
