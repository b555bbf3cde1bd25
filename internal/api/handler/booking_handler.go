package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spacehub/coworking-api/internal/api/metrics"
	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

const dateLayout = "2006-01-02"

// BookingHandler handles booking routes.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /bookings. It books a place for the caller.
//
// @Summary      Book a place
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string          false  "Deduplicates retries"
// @Param        body             body      bookingRequest  true   "Booking window"
// @Success      201              {object}  domain.Booking
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req bookingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.create(c, actor, ports.CreateBookingInput{
		PlaceID:        req.PlaceID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
}

// CreateOnBehalf handles POST /places/booking, where a workspace manager books a
// place for another user. Such bookings start PENDING.
//
// @Summary      Book a place on behalf of a user
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                  false  "Deduplicates retries"
// @Param        body             body      onBehalfBookingRequest  true   "Booking"
// @Success      201              {object}  domain.Booking
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /places/booking [post]
func (h *BookingHandler) CreateOnBehalf(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req onBehalfBookingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.create(c, actor, ports.CreateBookingInput{
		PlaceID:        req.PlaceID,
		UserID:         req.UserID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
}

func (h *BookingHandler) create(c echo.Context, actor domain.Principal, in ports.CreateBookingInput) error {
	b, err := h.service.Create(c.Request().Context(), actor, in)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.BookingConflictsTotal.Inc()
		}
		return err
	}
	metrics.BookingsCreatedTotal.WithLabelValues(string(b.Status)).Inc()
	return c.JSON(http.StatusCreated, b)
}

// ListMine handles GET /bookings, listing the caller's own bookings.
//
// @Summary      List own bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        from    query     string  false  "Window start (RFC 3339)"
// @Param        to      query     string  false  "Window end (RFC 3339)"
// @Param        offset  query     int     false  "Offset"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {array}   domain.Booking
// @Router       /bookings [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var (
		f        ports.MyBookingsFilter
		status   string
		from, to time.Time
	)
	err = echo.QueryParamsBinder(c).
		String("status", &status).
		Time("from", &from, time.RFC3339).
		Time("to", &to, time.RFC3339).
		Int("offset", &f.Offset).
		Int("limit", &f.Limit).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	f.Status = domain.BookingStatus(status)
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}

	bookings, err := h.service.ListMine(c.Request().Context(), actor, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// Get handles GET /bookings/:id.
//
// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  domain.Booking
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.service.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// History handles GET /bookings/:id/history.
//
// @Summary      Booking audit trail
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {array}   domain.BookingEvent
// @Failure      403  {object}  errorResponse
// @Router       /bookings/{id}/history [get]
func (h *BookingHandler) History(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	events, err := h.service.History(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Reschedule handles PATCH /bookings/:id.
//
// @Summary      Move a booking to a new window
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Booking ID"
// @Param        body  body      rescheduleRequest  true  "New window"
// @Success      200   {object}  domain.Booking
// @Failure      409   {object}  errorResponse
// @Router       /bookings/{id} [patch]
func (h *BookingHandler) Reschedule(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req rescheduleRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	b, err := h.service.Reschedule(c.Request().Context(), actor, id, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, domain.ErrBookingOverlap) {
			metrics.BookingConflictsTotal.Inc()
		}
		return err
	}
	metrics.BookingTransitionsTotal.WithLabelValues(string(domain.BookingRescheduledEvent)).Inc()
	return c.JSON(http.StatusOK, b)
}

// Cancel handles DELETE /bookings/:id.
//
// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  domain.Booking
// @Failure      409  {object}  errorResponse
// @Router       /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.service.Cancel, domain.BookingCancelledEvent)
}

// Accept handles PATCH /bookings/:id/accept.
//
// @Summary      Accept a pending booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  domain.Booking
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /bookings/{id}/accept [patch]
func (h *BookingHandler) Accept(c echo.Context) error {
	return h.transition(c, h.service.Accept, domain.BookingAcceptedEvent)
}

// Reject handles PATCH /bookings/:id/reject.
//
// @Summary      Reject a pending booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  domain.Booking
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /bookings/{id}/reject [patch]
func (h *BookingHandler) Reject(c echo.Context) error {
	return h.transition(c, h.service.Reject, domain.BookingRejectedEvent)
}

type transitionFunc func(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error)

func (h *BookingHandler) transition(c echo.Context, apply transitionFunc, event domain.BookingEventType) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := apply(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	metrics.BookingTransitionsTotal.WithLabelValues(string(event)).Inc()
	return c.JSON(http.StatusOK, b)
}

// PlaceBookings handles GET /places/:id/bookings.
//
// @Summary      Bookings of one place
// @Tags         places
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int     true   "Place ID"
// @Param        date  query     string  false  "Day filter (YYYY-MM-DD, UTC)"
// @Success      200   {array}   domain.Booking
// @Failure      404   {object}  errorResponse
// @Router       /places/{id}/bookings [get]
func (h *BookingHandler) PlaceBookings(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return err
	}
	bookings, err := h.service.ListForPlaces(c.Request().Context(), actor, []int64{id}, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// ListForPlaces handles POST /places/bookings.
//
// @Summary      Bookings of several places
// @Tags         places
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeBookingsRequest  true  "Places and optional day"
// @Success      200   {array}   domain.Booking
// @Failure      400   {object}  errorResponse
// @Router       /places/bookings [post]
func (h *BookingHandler) ListForPlaces(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req placeBookingsRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	bookings, err := h.service.ListForPlaces(c.Request().Context(), actor, req.PlaceIDs, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return &d, nil
}
