package ports

import (
	"context"
	"time"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// SignUpInput carries a registration request. Role and WorkspaceID are only
// honoured for privileged callers.
type SignUpInput struct {
	Email       string
	Password    string
	FirstName   string
	MiddleName  string
	LastName    string
	Phone       string
	Role        domain.Role
	WorkspaceID int64
}

// ProfileUpdate merges into the stored profile: nil fields keep their value.
type ProfileUpdate struct {
	FirstName  *string
	MiddleName *string
	LastName   *string
	Phone      *string
	Password   *string
}

// BanInput sets or clears a user's ban state.
type BanInput struct {
	UserID int64
	Banned *bool
	Reason *string
}

// UserPage is one page of users.
type UserPage struct {
	Items []*domain.User
	Total int64
}

// AuthService covers identity, sessions and user administration.
type AuthService interface {
	// SignUp registers a user. actor is nil for anonymous sign-up.
	SignUp(ctx context.Context, actor *domain.Principal, in SignUpInput) (*domain.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Profile(ctx context.Context, actor domain.Principal) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Principal, in ProfileUpdate) (*domain.User, error)
	SetBan(ctx context.Context, actor domain.Principal, in BanInput) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Principal, f UserFilter) (*UserPage, error)
	MyWorkspaces(ctx context.Context, actor domain.Principal) ([]*domain.Workspace, error)

	TelegramLogin(ctx context.Context, payload domain.TelegramAuth) (*domain.TokenPair, error)
	LinkTelegram(ctx context.Context, actor domain.Principal, payload domain.TelegramAuth) (*domain.User, error)
	UnlinkTelegram(ctx context.Context, actor domain.Principal) (*domain.User, error)
}

// WorkspaceInput creates a workspace.
type WorkspaceInput struct {
	Name        string
	Address     string
	Description string
	Capacity    int
	Amenities   []string
}

// WorkspacePatch updates a workspace; nil fields are left untouched.
type WorkspacePatch struct {
	Name        *string
	Address     *string
	Description *string
	Capacity    *int
	Amenities   []string
}

// WorkspacePage is one page of workspaces.
type WorkspacePage struct {
	Items []*domain.Workspace
	Total int64
}

// WorkspaceService manages workspaces, their approval and their managers.
type WorkspaceService interface {
	Create(ctx context.Context, actor domain.Principal, in WorkspaceInput) (*domain.Workspace, error)
	List(ctx context.Context, actor domain.Principal, f WorkspaceFilter) (*WorkspacePage, error)
	Get(ctx context.Context, id int64) (*domain.Workspace, error)
	Update(ctx context.Context, actor domain.Principal, id int64, in WorkspacePatch) (*domain.Workspace, error)
	Approve(ctx context.Context, actor domain.Principal, id int64, approved bool) (*domain.Workspace, error)
	Remove(ctx context.Context, actor domain.Principal, id int64) error

	AddManager(ctx context.Context, actor domain.Principal, workspaceID, managerID int64) (*domain.WorkspaceManager, error)
	RemoveManager(ctx context.Context, actor domain.Principal, workspaceID, managerID int64) error
	ListManagers(ctx context.Context, actor domain.Principal, workspaceID int64) ([]*domain.User, error)
}

// ZoneInput creates a zone.
type ZoneInput struct {
	WorkspaceID  int64
	Name         string
	Description  string
	PricePerHour float64
	MaxPlaces    int
}

// ZonePatch updates a zone; nil fields are left untouched.
type ZonePatch struct {
	Name         *string
	Description  *string
	PricePerHour *float64
	MaxPlaces    *int
}

// ZoneService manages the zones of a workspace.
type ZoneService interface {
	Create(ctx context.Context, actor domain.Principal, in ZoneInput) (*domain.Zone, error)
	List(ctx context.Context, workspaceID int64) ([]*domain.Zone, error)
	Get(ctx context.Context, id int64) (*domain.Zone, error)
	Update(ctx context.Context, actor domain.Principal, id int64, in ZonePatch) (*domain.Zone, error)
	Remove(ctx context.Context, actor domain.Principal, id int64) error
}

// PlaceInput creates a place. A nil ZoneID creates a place outside any zone.
type PlaceInput struct {
	ZoneID      *int64
	Name        string
	Description string
	Status      domain.PlaceStatus
}

// PlacePatch updates a place; nil fields are left untouched.
type PlacePatch struct {
	ZoneID      *int64
	Name        *string
	Description *string
	Status      *domain.PlaceStatus
}

// PlaceService manages bookable places.
type PlaceService interface {
	Create(ctx context.Context, actor domain.Principal, in PlaceInput) (*domain.Place, error)
	List(ctx context.Context, f PlaceFilter) ([]*domain.Place, error)
	Get(ctx context.Context, id int64) (*domain.Place, error)
	Update(ctx context.Context, actor domain.Principal, id int64, in PlacePatch) (*domain.Place, error)
	Remove(ctx context.Context, actor domain.Principal, id int64) error
}

// CreateBookingInput requests a reservation. A zero UserID books for the actor;
// any other user is booked on their behalf by a workspace manager.
type CreateBookingInput struct {
	PlaceID        int64
	UserID         int64
	StartTime      time.Time
	EndTime        time.Time
	IdempotencyKey string
}

// MyBookingsFilter narrows the caller's own bookings.
type MyBookingsFilter struct {
	Status domain.BookingStatus
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

// BookingService owns conflict detection, pricing and the booking state machine.
type BookingService interface {
	Create(ctx context.Context, actor domain.Principal, in CreateBookingInput) (*domain.Booking, error)
	Get(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error)
	ListMine(ctx context.Context, actor domain.Principal, f MyBookingsFilter) ([]*domain.Booking, error)
	// ListForPlaces returns bookings of the given places, optionally restricted
	// to the UTC calendar day containing date.
	ListForPlaces(ctx context.Context, actor domain.Principal, placeIDs []int64, date *time.Time) ([]*domain.Booking, error)
	Accept(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error)
	Reject(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, actor domain.Principal, id int64) (*domain.Booking, error)
	Reschedule(ctx context.Context, actor domain.Principal, id int64, start, end time.Time) (*domain.Booking, error)
	History(ctx context.Context, actor domain.Principal, id int64) ([]domain.BookingEvent, error)
}
