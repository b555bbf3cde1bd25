package ports

import (
	"context"
	"time"
)

// TxOptions configures a unit of work.
type TxOptions struct {
	// Serializable runs the transaction at SERIALIZABLE isolation. Booking
	// writes use it so concurrent overlap checks cannot both succeed.
	Serializable bool
	// Timeout bounds the whole transaction; zero means the caller's deadline only.
	Timeout time.Duration
}

// Store groups every repository behind a single transactional boundary.
type Store interface {
	Users() UserRepository
	Workspaces() WorkspaceRepository
	Managers() ManagerRepository
	Zones() ZoneRepository
	Places() PlaceRepository
	Bookings() BookingRepository

	// InTx runs fn inside a transaction. fn must use the Store it receives;
	// any error it returns rolls the whole unit back.
	InTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, tx Store) error) error
}
