package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

type bookingRepository struct {
	db querier
}

const bookingCols = `id, place_id, user_id, start_time, end_time, status, total_price, created_at, updated_at`

func bookingDest(b *domain.Booking) []any {
	return []any{&b.ID, &b.PlaceID, &b.UserID, &b.StartTime, &b.EndTime, &b.Status, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(bookingDest(&b)...); err != nil {
		return nil, err
	}
	b.StartTime, b.EndTime = b.StartTime.UTC(), b.EndTime.UTC()
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	const q = `INSERT INTO bookings (
		place_id, user_id, start_time, end_time, status, total_price, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	RETURNING id`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, q,
		b.PlaceID, b.UserID, b.StartTime, b.EndTime, b.Status, b.TotalPrice, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	return mapError(err, domain.ErrPlaceNotFound)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrBookingNotFound)
	}
	return b, nil
}

// ListBlocking locks the rows it returns so a concurrent writer of the same
// place waits for this transaction.
func (r *bookingRepository) ListBlocking(ctx context.Context, placeID int64, from, to time.Time) ([]*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
	WHERE place_id = $1 AND status <> $2 AND start_time < $4 AND end_time > $3
	ORDER BY start_time
	FOR UPDATE`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, q, placeID, domain.BookingCancelled, from, to)
	if err != nil {
		return nil, mapError(err, domain.ErrBookingNotFound)
	}
	defer rows.Close()
	return collectBookings(rows, false)
}

func (r *bookingRepository) List(ctx context.Context, f ports.BookingFilter) ([]*domain.Booking, error) {
	var c conds
	if len(f.PlaceIDs) > 0 {
		c.and("b.place_id = ANY(" + c.arg(f.PlaceIDs) + ")")
	}
	if f.UserID != 0 {
		c.and("b.user_id = " + c.arg(f.UserID))
	}
	if f.Status != "" {
		c.and("b.status = " + c.arg(f.Status))
	}
	if f.From != nil {
		c.and("b.end_time > " + c.arg(*f.From))
	}
	if f.To != nil {
		c.and("b.start_time < " + c.arg(*f.To))
	}

	cols := prefixed("b", bookingCols)
	from := ` FROM bookings b`
	if f.WithUser {
		cols += ", " + prefixed("u", userCols)
		from += ` JOIN users u ON u.id = b.user_id`
	}
	q := `SELECT ` + cols + from + c.where() + ` ORDER BY b.start_time, b.id`
	q += c.page(f.Offset, f.Limit)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, q, c.args...)
	if err != nil {
		return nil, mapError(err, domain.ErrBookingNotFound)
	}
	defer rows.Close()
	return collectBookings(rows, f.WithUser)
}

func collectBookings(rows pgx.Rows, withUser bool) ([]*domain.Booking, error) {
	bookings := []*domain.Booking{}
	for rows.Next() {
		var (
			b      domain.Booking
			u      domain.User
			roleID int64
		)
		dest := bookingDest(&b)
		if withUser {
			dest = append(dest,
				&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.MiddleName, &u.LastName, &u.Phone,
				&roleID, &u.Banned, &u.ReasonBanned, &u.TelegramID, &u.TelegramUsername, &u.CreatedAt, &u.UpdatedAt,
			)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, mapError(err, domain.ErrBookingNotFound)
		}
		b.StartTime, b.EndTime = b.StartTime.UTC(), b.EndTime.UTC()
		if withUser {
			u.Role, _ = domain.RoleByID(roleID)
			b.User = &u
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, domain.ErrBookingNotFound)
	}
	return bookings, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	const q = `UPDATE bookings SET start_time = $2, end_time = $3, status = $4, total_price = $5, updated_at = $6
	WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, q, b.ID, b.StartTime, b.EndTime, b.Status, b.TotalPrice, b.UpdatedAt)
	return expectOne(tag, err, domain.ErrBookingNotFound)
}

func (r *bookingRepository) DeleteByPlace(ctx context.Context, placeID int64) error {
	return r.deleteWhere(ctx, `place_id = $1`, placeID)
}

func (r *bookingRepository) DeleteByZone(ctx context.Context, zoneID int64) error {
	return r.deleteWhere(ctx, `place_id IN (SELECT id FROM places WHERE zone_id = $1)`, zoneID)
}

func (r *bookingRepository) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	return r.deleteWhere(ctx, `place_id IN (
		SELECT p.id FROM places p
		JOIN workspace_zones z ON z.id = p.zone_id
		WHERE z.workspace_id = $1)`, workspaceID)
}

func (r *bookingRepository) deleteWhere(ctx context.Context, where string, arg any) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE `+where, arg)
	return mapError(err, domain.ErrBookingNotFound)
}
