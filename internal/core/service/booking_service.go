package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/policy"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// DefaultIdempotencyTTL is how long an Idempotency-Key keeps pointing at its booking.
const DefaultIdempotencyTTL = 24 * time.Hour

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.BookingEvent) {}

// BookingService implements conflict detection, pricing and the booking state machine.
type BookingService struct {
	store   ports.Store
	events  ports.EventPublisher
	idem    ports.IdempotencyStore
	audit   ports.AuditLog
	idemTTL time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewBookingService wires the service. events, idem and audit are optional.
func NewBookingService(
	store ports.Store,
	events ports.EventPublisher,
	idem ports.IdempotencyStore,
	audit ports.AuditLog,
	log zerolog.Logger,
) *BookingService {
	if events == nil {
		events = noopPublisher{}
	}
	return &BookingService{
		store:   store,
		events:  events,
		idem:    idem,
		audit:   audit,
		idemTTL: DefaultIdempotencyTTL,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.BookingService = (*BookingService)(nil)

// Create books a place. The place lookup, overlap check and insert run in one
// serializable transaction so two overlapping requests cannot both succeed.
func (s *BookingService) Create(ctx context.Context, actor domain.Principal, in ports.CreateBookingInput) (*domain.Booking, error) {
	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if !domain.ValidRange(start, end) {
		return nil, domain.ErrInvalidTimeRange
	}

	userID := in.UserID
	onBehalf := userID != 0 && userID != actor.UserID
	if userID == 0 {
		userID = actor.UserID
	}

	if b := s.replay(ctx, actor, in.IdempotencyKey); b != nil {
		return b, nil
	}

	booking := &domain.Booking{
		PlaceID:   in.PlaceID,
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Status:    domain.BookingActive,
	}
	if onBehalf {
		booking.Status = domain.BookingPending
	}

	err := s.store.InTx(ctx, ports.TxOptions{Serializable: true}, func(ctx context.Context, tx ports.Store) error {
		place, err := tx.Places().GetByID(ctx, in.PlaceID)
		if err != nil {
			return err
		}
		if place.Status == domain.PlaceMaintenance {
			return domain.ErrPlaceUnavailable
		}
		zone, res, err := placeResource(ctx, tx, actor, place)
		if err != nil {
			return err
		}
		if onBehalf {
			if err := policy.Authorize(actor, policy.ManageWorkspace, res); err != nil {
				return err
			}
		}
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		if err := checkConflict(ctx, tx, place.ID, 0, start, end); err != nil {
			return err
		}

		if zone != nil {
			booking.TotalPrice = domain.Price(zone.PricePerHour, start, end)
		}
		now := s.now()
		booking.CreatedAt, booking.UpdatedAt = now, now
		return tx.Bookings().Create(ctx, booking)
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.remember(ctx, actor, in.IdempotencyKey, booking.ID)
	s.publish(ctx, domain.BookingCreatedEvent, booking, actor)
	s.log.Info().
		Int64("booking_id", booking.ID).
		Int64("place_id", booking.PlaceID).
		Int64("user_id", booking.UserID).
		Str("status", string(booking.Status)).
		Float64("total_price", booking.TotalPrice).
		Msg("booking created")
	return booking, nil
}

// checkConflict fails with domain.ErrBookingOverlap when a non-cancelled
// booking of placeID other than selfID intersects [start, end).
func checkConflict(ctx context.Context, tx ports.Store, placeID, selfID int64, start, end time.Time) error {
	existing, err := tx.Bookings().ListBlocking(ctx, placeID, start, end)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if b.ID == selfID || !b.Status.Blocking() {
			continue
		}
		if domain.Overlaps(b.StartTime, b.EndTime, start, end) {
			return domain.ErrBookingOverlap
		}
	}
	return nil
}

func (s *BookingService) Get(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error) {
	b, _, err := s.authorizeBooking(ctx, s.store, actor, id, policy.ManageBooking)
	return b, err
}

func (s *BookingService) ListMine(ctx context.Context, actor domain.Principal, f ports.MyBookingsFilter) ([]*domain.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "unknown booking status %q", f.Status)
	}
	offset, limit := page(f.Offset, f.Limit)
	return s.store.Bookings().List(ctx, ports.BookingFilter{
		UserID: actor.UserID,
		Status: f.Status,
		From:   f.From,
		To:     f.To,
		Offset: offset,
		Limit:  limit,
	})
}

// ListForPlaces returns every booking of placeIDs, including cancelled ones.
// Requester identity is only disclosed to the booking's owner and to those who
// manage the place's workspace.
func (s *BookingService) ListForPlaces(ctx context.Context, actor domain.Principal, placeIDs []int64, date *time.Time) ([]*domain.Booking, error) {
	if len(placeIDs) == 0 {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "at least one place id is required")
	}

	manages := make(map[int64]bool, len(placeIDs))
	for _, id := range placeIDs {
		if _, seen := manages[id]; seen {
			continue
		}
		place, err := s.store.Places().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		_, res, err := placeResource(ctx, s.store, actor, place)
		if err != nil {
			return nil, err
		}
		manages[id] = policy.CanPerform(actor, policy.ManageWorkspace, res)
	}

	// Unpaged: callers narrow the result with the date filter.
	f := ports.BookingFilter{PlaceIDs: placeIDs, WithUser: true}
	if date != nil {
		from, to := domain.DayWindow(*date)
		f.From, f.To = &from, &to
	}
	bookings, err := s.store.Bookings().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list place bookings: %w", err)
	}
	for _, b := range bookings {
		if !manages[b.PlaceID] && b.UserID != actor.UserID {
			b.User = nil
		}
	}
	return bookings, nil
}

// Accept moves a PENDING booking to ACTIVE.
func (s *BookingService) Accept(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, policy.ManageWorkspace, domain.BookingPending, domain.BookingActive, domain.BookingAcceptedEvent)
}

// Reject moves a PENDING booking to CANCELLED.
func (s *BookingService) Reject(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, policy.ManageWorkspace, domain.BookingPending, domain.BookingCancelled, domain.BookingRejectedEvent)
}

// Cancel moves an ACTIVE or PENDING booking to CANCELLED.
func (s *BookingService) Cancel(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, policy.ManageBooking, "", domain.BookingCancelled, domain.BookingCancelledEvent)
}

// transition applies next to booking id. A non-empty from additionally
// requires the booking to currently be in that status.
func (s *BookingService) transition(
	ctx context.Context,
	actor domain.Principal,
	id int64,
	action policy.Action,
	from, next domain.BookingStatus,
	event domain.BookingEventType,
) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		var err error
		if b, _, err = s.authorizeBooking(ctx, tx, actor, id, action); err != nil {
			return err
		}
		if (from != "" && b.Status != from) || !b.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, b.Status, next)
		}
		b.Status = next
		b.UpdatedAt = s.now()
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("transition booking: %w", err)
	}
	s.publish(ctx, event, b, actor)
	return b, nil
}

// Reschedule moves a live booking to a new window and reprices it.
func (s *BookingService) Reschedule(ctx context.Context, actor domain.Principal, id int64, start, end time.Time) (*domain.Booking, error) {
	start, end = start.UTC(), end.UTC()
	if !domain.ValidRange(start, end) {
		return nil, domain.ErrInvalidTimeRange
	}

	var b *domain.Booking
	err := s.store.InTx(ctx, ports.TxOptions{Serializable: true}, func(ctx context.Context, tx ports.Store) error {
		var (
			zone *domain.Zone
			err  error
		)
		if b, zone, err = s.authorizeBooking(ctx, tx, actor, id, policy.ManageBooking); err != nil {
			return err
		}
		if b.Status.Terminal() {
			return fmt.Errorf("%w: %s bookings cannot be rescheduled", domain.ErrInvalidTransition, b.Status)
		}
		if err := checkConflict(ctx, tx, b.PlaceID, b.ID, start, end); err != nil {
			return err
		}
		b.StartTime, b.EndTime = start, end
		b.TotalPrice = 0
		if zone != nil {
			b.TotalPrice = domain.Price(zone.PricePerHour, start, end)
		}
		b.UpdatedAt = s.now()
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("reschedule booking: %w", err)
	}
	s.publish(ctx, domain.BookingRescheduledEvent, b, actor)
	return b, nil
}

// History returns the audit trail of a booking, oldest first.
func (s *BookingService) History(ctx context.Context, actor domain.Principal, id int64) ([]domain.BookingEvent, error) {
	if _, _, err := s.authorizeBooking(ctx, s.store, actor, id, policy.ManageBooking); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []domain.BookingEvent{}, nil
	}
	events, err := s.audit.ListByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking history: %w", err)
	}
	return events, nil
}

// authorizeBooking loads booking id with the zone of its place and checks
// action for actor.
func (s *BookingService) authorizeBooking(ctx context.Context, st ports.Store, actor domain.Principal, id int64, action policy.Action) (*domain.Booking, *domain.Zone, error) {
	b, err := st.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	place, err := st.Places().GetByID(ctx, b.PlaceID)
	if err != nil {
		return nil, nil, err
	}
	zone, res, err := placeResource(ctx, st, actor, place)
	if err != nil {
		return nil, nil, err
	}
	res.BookingUserID = b.UserID
	if err := policy.Authorize(actor, action, res); err != nil {
		return nil, nil, err
	}
	return b, zone, nil
}

// replay returns the booking an earlier request with the same key created.
// Lookup failures are logged and ignored.
func (s *BookingService) replay(ctx context.Context, actor domain.Principal, key string) *domain.Booking {
	if s.idem == nil || key == "" {
		return nil
	}
	id, found, err := s.idem.Lookup(ctx, actor.UserID, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}
	b, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Int64("booking_id", id).Msg("idempotent booking vanished, creating anyway")
		return nil
	}
	s.log.Debug().Int64("booking_id", id).Str("idempotency_key", key).Msg("idempotent replay")
	return b
}

func (s *BookingService) remember(ctx context.Context, actor domain.Principal, key string, bookingID int64) {
	if s.idem == nil || key == "" {
		return
	}
	if err := s.idem.Remember(ctx, actor.UserID, key, bookingID, s.idemTTL); err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency key")
	}
}

func (s *BookingService) publish(ctx context.Context, t domain.BookingEventType, b *domain.Booking, actor domain.Principal) {
	s.events.Publish(ctx, domain.NewBookingEvent(t, b, actor.UserID, s.now()))
}
