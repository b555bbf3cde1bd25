package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core either is one of these or
// unwraps to one of them; anything else is treated as internal by the transport.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrConflict         = errors.New("conflict")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidState     = errors.New("invalid state")
	ErrInternal         = errors.New("internal error")
)

// Error carries a human-readable message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind sentinel err unwraps to, or ErrInternal.
func KindOf(err error) error {
	for _, k := range []error{
		ErrNotFound, ErrAlreadyExists, ErrConflict, ErrUnauthenticated,
		ErrPermissionDenied, ErrInvalidArgument, ErrInvalidState,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

var (
	ErrUserNotFound       = Errorf(ErrNotFound, "user not found")
	ErrUserExists         = Errorf(ErrAlreadyExists, "user with this email already exists")
	ErrInvalidCredentials = Errorf(ErrUnauthenticated, "invalid credentials")
	ErrInvalidToken       = Errorf(ErrUnauthenticated, "invalid or expired token")
	ErrInvalidTelegram    = Errorf(ErrUnauthenticated, "invalid telegram auth data")
	ErrUserBanned         = Errorf(ErrPermissionDenied, "user is banned")
	ErrForbidden          = Errorf(ErrPermissionDenied, "access forbidden")
	ErrRoleRequired       = Errorf(ErrInvalidArgument, "role is required")
	ErrWorkspaceRequired  = Errorf(ErrInvalidArgument, "workspaceId is required for manager accounts")
	ErrTelegramDisabled   = Errorf(ErrInvalidState, "telegram login is not configured")

	ErrTelegramLinked    = Errorf(ErrAlreadyExists, "this telegram account is already linked to another user")
	ErrTelegramNotLinked = Errorf(ErrNotFound, "user with this telegram account not found, link your telegram account first")

	ErrWorkspaceNotFound = Errorf(ErrNotFound, "workspace not found")
	ErrManagerExists     = Errorf(ErrAlreadyExists, "user is already a manager of this workspace")
	ErrManagerNotFound   = Errorf(ErrNotFound, "manager not found in this workspace")
	ErrZoneNotFound      = Errorf(ErrNotFound, "zone not found")
	ErrPlaceNotFound     = Errorf(ErrNotFound, "place not found")
	ErrZoneFull          = Errorf(ErrConflict, "zone has reached its place limit")
	ErrPlaceUnavailable  = Errorf(ErrInvalidState, "place is under maintenance")

	ErrBookingNotFound   = Errorf(ErrNotFound, "booking not found")
	ErrBookingOverlap    = Errorf(ErrConflict, "place already booked for requested period")
	ErrInvalidTimeRange  = Errorf(ErrInvalidArgument, "end time must be after start time")
	ErrInvalidTransition = Errorf(ErrInvalidState, "invalid booking status transition")
)
