package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/spacehub/coworking-api/internal/api/middleware"
	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

type stubBookingService struct {
	ports.BookingService
	createFn func(ctx context.Context, actor domain.Principal, in ports.CreateBookingInput) (*domain.Booking, error)
	listFn   func(ctx context.Context, actor domain.Principal, placeIDs []int64, date *time.Time) ([]*domain.Booking, error)
	mineFn   func(ctx context.Context, actor domain.Principal, f ports.MyBookingsFilter) ([]*domain.Booking, error)
	cancelFn func(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error)
}

func (s *stubBookingService) Create(ctx context.Context, actor domain.Principal, in ports.CreateBookingInput) (*domain.Booking, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubBookingService) ListForPlaces(ctx context.Context, actor domain.Principal, placeIDs []int64, date *time.Time) ([]*domain.Booking, error) {
	return s.listFn(ctx, actor, placeIDs, date)
}

func (s *stubBookingService) ListMine(ctx context.Context, actor domain.Principal, f ports.MyBookingsFilter) ([]*domain.Booking, error) {
	return s.mineFn(ctx, actor, f)
}

func (s *stubBookingService) Cancel(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error) {
	return s.cancelFn(ctx, actor, id)
}

var member = domain.Principal{UserID: 5, Email: "u@example.com", Role: domain.RoleUser}

func TestBookingHandler_Create(t *testing.T) {
	stub := &stubBookingService{
		createFn: func(ctx context.Context, actor domain.Principal, in ports.CreateBookingInput) (*domain.Booking, error) {
			if actor != member {
				t.Fatalf("unexpected actor: %+v", actor)
			}
			if in.PlaceID != 4 || in.UserID != 0 || in.IdempotencyKey != "k-1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if !in.StartTime.Equal(time.Date(2030, 3, 14, 10, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected start: %v", in.StartTime)
			}
			return &domain.Booking{ID: 1, PlaceID: 4, UserID: 5, Status: domain.BookingActive, TotalPrice: 200}, nil
		},
	}
	h := NewBookingHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/bookings", `{"placeId":4,"startTime":"2030-03-14T10:00:00Z","endTime":"2030-03-14T12:00:00Z"}`)
	c.Request().Header.Set(HeaderIdempotencyKey, "k-1")
	c.Set(middleware.PrincipalKey, member)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var b domain.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if b.Status != domain.BookingActive || b.TotalPrice != 200 {
		t.Fatalf("unexpected booking: %+v", b)
	}
}

func TestBookingHandler_Create_Conflict(t *testing.T) {
	stub := &stubBookingService{
		createFn: func(ctx context.Context, actor domain.Principal, in ports.CreateBookingInput) (*domain.Booking, error) {
			return nil, domain.ErrBookingOverlap
		},
	}
	h := NewBookingHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/bookings", `{"placeId":4,"startTime":"2030-03-14T10:00:00Z","endTime":"2030-03-14T12:00:00Z"}`)
	c.Set(middleware.PrincipalKey, member)
	if err := h.Create(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestBookingHandler_CreateOnBehalf(t *testing.T) {
	stub := &stubBookingService{
		createFn: func(ctx context.Context, actor domain.Principal, in ports.CreateBookingInput) (*domain.Booking, error) {
			if in.UserID != 8 {
				t.Fatalf("expected booking for user 8, got %+v", in)
			}
			return &domain.Booking{ID: 2, UserID: 8, Status: domain.BookingPending}, nil
		},
	}
	h := NewBookingHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/places/booking", `{"placeId":4,"userId":8,"startTime":"2030-03-14T10:00:00Z","endTime":"2030-03-14T12:00:00Z"}`)
	c.Set(middleware.PrincipalKey, domain.Principal{UserID: 3, Role: domain.RoleManager})
	if err := h.CreateOnBehalf(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = newJSONContext(http.MethodPost, "/places/booking", `{"placeId":4,"startTime":"2030-03-14T10:00:00Z","endTime":"2030-03-14T12:00:00Z"}`)
	c.Set(middleware.PrincipalKey, domain.Principal{UserID: 3, Role: domain.RoleManager})
	expectHTTPError(t, h.CreateOnBehalf(c), http.StatusBadRequest)
}

func TestBookingHandler_ListForPlaces(t *testing.T) {
	var gotIDs []int64
	var gotDate *time.Time
	stub := &stubBookingService{
		listFn: func(ctx context.Context, actor domain.Principal, placeIDs []int64, date *time.Time) ([]*domain.Booking, error) {
			gotIDs, gotDate = placeIDs, date
			return []*domain.Booking{}, nil
		},
	}
	h := NewBookingHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/places/bookings", `{"placeIds":[1,2],"date":"2030-03-14"}`)
	c.Set(middleware.PrincipalKey, member)
	if err := h.ListForPlaces(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || len(gotIDs) != 2 {
		t.Fatalf("unexpected call: code=%d ids=%v", rec.Code, gotIDs)
	}
	if gotDate == nil || !gotDate.Equal(time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", gotDate)
	}

	for name, body := range map[string]string{
		"no places": `{"placeIds":[]}`,
		"bad id":    `{"placeIds":[0]}`,
		"bad date":  `{"placeIds":[1],"date":"14/03/2030"}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/places/bookings", body)
			c.Set(middleware.PrincipalKey, member)
			expectHTTPError(t, h.ListForPlaces(c), http.StatusBadRequest)
		})
	}
}

func TestBookingHandler_PlaceBookings_NoDate(t *testing.T) {
	stub := &stubBookingService{
		listFn: func(ctx context.Context, actor domain.Principal, placeIDs []int64, date *time.Time) ([]*domain.Booking, error) {
			if len(placeIDs) != 1 || placeIDs[0] != 7 || date != nil {
				t.Fatalf("unexpected call: %v %v", placeIDs, date)
			}
			return nil, nil
		},
	}
	h := NewBookingHandler(stub)

	c, _ := newJSONContext(http.MethodGet, "/places/7/bookings", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set(middleware.PrincipalKey, member)
	if err := h.PlaceBookings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestBookingHandler_ListMine_Query(t *testing.T) {
	stub := &stubBookingService{
		mineFn: func(ctx context.Context, actor domain.Principal, f ports.MyBookingsFilter) ([]*domain.Booking, error) {
			if f.Status != domain.BookingActive || f.From == nil || f.To != nil || f.Limit != 10 {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return nil, nil
		},
	}
	h := NewBookingHandler(stub)

	c, _ := newJSONContext(http.MethodGet, "/bookings?status=ACTIVE&from=2030-03-14T00:00:00Z&limit=10", "")
	c.Set(middleware.PrincipalKey, member)
	if err := h.ListMine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	c, _ = newJSONContext(http.MethodGet, "/bookings?from=yesterday", "")
	c.Set(middleware.PrincipalKey, member)
	expectHTTPError(t, h.ListMine(c), http.StatusBadRequest)
}

func TestBookingHandler_Cancel(t *testing.T) {
	stub := &stubBookingService{
		cancelFn: func(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error) {
			if id != 11 {
				t.Fatalf("unexpected id %d", id)
			}
			return &domain.Booking{ID: 11, Status: domain.BookingCancelled}, nil
		},
	}
	h := NewBookingHandler(stub)

	c, rec := newJSONContext(http.MethodDelete, "/bookings/11", "")
	c.SetParamNames("id")
	c.SetParamValues("11")
	c.Set(middleware.PrincipalKey, member)
	if err := h.Cancel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newJSONContext(http.MethodDelete, "/bookings/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set(middleware.PrincipalKey, member)
	expectHTTPError(t, h.Cancel(c), http.StatusBadRequest)
}
