package ports

import (
	"context"
	"time"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// UserFilter narrows user listings. Query matches email or any name part.
type UserFilter struct {
	Query  string
	Role   domain.Role
	Banned *bool
	Offset int
	Limit  int
}

// UserRepository persists users. Lookups of missing rows return domain.ErrUserNotFound.
type UserRepository interface {
	// Create assigns ID and timestamps. Duplicate email yields domain.ErrUserExists,
	// duplicate telegram id yields domain.ErrTelegramLinked.
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error)
	// Update writes every mutable column of u.
	Update(ctx context.Context, u *domain.User) error
	List(ctx context.Context, f UserFilter) ([]*domain.User, int64, error)
}

// WorkspaceFilter narrows workspace listings. MemberID matches workspaces the
// user owns or manages through an active link.
type WorkspaceFilter struct {
	Query    string
	OwnerID  int64
	MemberID int64
	Approved *bool
	Offset   int
	Limit    int
}

// WorkspaceRepository persists workspaces. Missing rows return domain.ErrWorkspaceNotFound.
type WorkspaceRepository interface {
	Create(ctx context.Context, w *domain.Workspace) error
	GetByID(ctx context.Context, id int64) (*domain.Workspace, error)
	List(ctx context.Context, f WorkspaceFilter) ([]*domain.Workspace, int64, error)
	Update(ctx context.Context, w *domain.Workspace) error
	SetApproved(ctx context.Context, id int64, approved bool) error
	Delete(ctx context.Context, id int64) error
}

// ManagerRepository persists workspace manager links. Every read ignores
// tombstoned links.
type ManagerRepository interface {
	// Add fails with domain.ErrManagerExists when an active link already exists.
	Add(ctx context.Context, m *domain.WorkspaceManager) error
	IsManager(ctx context.Context, workspaceID, userID int64) (bool, error)
	ListManagers(ctx context.Context, workspaceID int64) ([]*domain.User, error)
	// SoftDelete tombstones the active link or fails with domain.ErrManagerNotFound.
	SoftDelete(ctx context.Context, workspaceID, managerID int64) error
	// DeleteByWorkspace physically removes all links, tombstoned ones included.
	DeleteByWorkspace(ctx context.Context, workspaceID int64) error
}

// ZoneRepository persists zones. Missing rows return domain.ErrZoneNotFound.
type ZoneRepository interface {
	Create(ctx context.Context, z *domain.Zone) error
	GetByID(ctx context.Context, id int64) (*domain.Zone, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]*domain.Zone, error)
	Update(ctx context.Context, z *domain.Zone) error
	Delete(ctx context.Context, id int64) error
	DeleteByWorkspace(ctx context.Context, workspaceID int64) error
}

// PlaceFilter narrows place listings.
type PlaceFilter struct {
	ZoneID      *int64
	WorkspaceID int64
	Status      domain.PlaceStatus
	Offset      int
	Limit       int
}

// PlaceRepository persists places. Missing rows return domain.ErrPlaceNotFound.
type PlaceRepository interface {
	Create(ctx context.Context, p *domain.Place) error
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
	List(ctx context.Context, f PlaceFilter) ([]*domain.Place, error)
	CountByZone(ctx context.Context, zoneID int64) (int, error)
	Update(ctx context.Context, p *domain.Place) error
	Delete(ctx context.Context, id int64) error
	DeleteByZone(ctx context.Context, zoneID int64) error
	DeleteByWorkspace(ctx context.Context, workspaceID int64) error
}

// BookingFilter narrows booking listings. From/To select bookings whose
// interval intersects [From, To).
type BookingFilter struct {
	PlaceIDs []int64
	UserID   int64
	Status   domain.BookingStatus
	From     *time.Time
	To       *time.Time
	WithUser bool
	Offset   int
	Limit    int
}

// BookingRepository persists bookings. Missing rows return domain.ErrBookingNotFound.
type BookingRepository interface {
	// Create fails with a domain.ErrConflict kind when storage rejects an overlap.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// ListBlocking returns the non-cancelled bookings of placeID intersecting [from, to).
	ListBlocking(ctx context.Context, placeID int64, from, to time.Time) ([]*domain.Booking, error)
	List(ctx context.Context, f BookingFilter) ([]*domain.Booking, error)
	// Update writes times, status and price of b.
	Update(ctx context.Context, b *domain.Booking) error
	DeleteByPlace(ctx context.Context, placeID int64) error
	DeleteByZone(ctx context.Context, zoneID int64) error
	DeleteByWorkspace(ctx context.Context, workspaceID int64) error
}
