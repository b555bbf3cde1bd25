package handler

import (
	"encoding/json"
	"time"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signUpRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone"`
	Role        string `json:"role"        validate:"omitempty,role"`
	WorkspaceID int64  `json:"workspaceId" validate:"gte=0"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// telegramAuthRequest is the login widget payload. Telegram sends numeric
// fields as numbers; some clients send them as strings, both are accepted.
type telegramAuthRequest struct {
	ID         json.Number `json:"id"`
	TelegramID json.Number `json:"telegramId"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Username   string      `json:"username"`
	PhotoURL   string      `json:"photo_url"`
	AuthDate   json.Number `json:"auth_date"`
	Hash       string      `json:"hash" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type profileUpdateRequest struct {
	FirstName  *string `json:"firstName"`
	MiddleName *string `json:"middleName"`
	LastName   *string `json:"lastName"`
	Phone      *string `json:"phone"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
}

type banRequest struct {
	ID        int64   `json:"id"        validate:"required,gt=0"`
	IsBanned  *bool   `json:"isBanned"`
	BanReason *string `json:"banReason"`
}

type userListResponse struct {
	Items []*domain.User `json:"items"`
	Total int64          `json:"total"`
}

// --- Workspaces ---

type workspaceRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"    validate:"gte=0"`
	Amenities   []string `json:"amenities"`
}

type workspacePatchRequest struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	Description *string  `json:"description"`
	Capacity    *int     `json:"capacity" validate:"omitempty,gte=0"`
	Amenities   []string `json:"amenities"`
}

type approveRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

type addManagerRequest struct {
	ManagerID int64 `json:"managerId" validate:"required,gt=0"`
}

type workspaceListResponse struct {
	Items []*domain.Workspace `json:"items"`
	Total int64               `json:"total"`
}

// --- Zones ---

type zoneRequest struct {
	WorkspaceID  int64   `json:"workspaceId"  validate:"required,gt=0"`
	Name         string  `json:"name"         validate:"required"`
	Description  string  `json:"description"`
	PricePerHour float64 `json:"pricePerHour" validate:"gte=0"`
	MaxPlaces    int     `json:"maxPlaces"    validate:"gte=0"`
}

type zonePatchRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	PricePerHour *float64 `json:"pricePerHour" validate:"omitempty,gte=0"`
	MaxPlaces    *int     `json:"maxPlaces"    validate:"omitempty,gte=0"`
}

// --- Places ---

type placeRequest struct {
	ZoneID      *int64 `json:"zoneId"`
	Name        string `json:"name"   validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,place_status"`
}

type placePatchRequest struct {
	ZoneID      *int64  `json:"zoneId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,place_status"`
}

// --- Bookings ---

type bookingRequest struct {
	PlaceID   int64     `json:"placeId"   validate:"required,gt=0"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime"   validate:"required"`
}

type onBehalfBookingRequest struct {
	PlaceID   int64     `json:"placeId"   validate:"required,gt=0"`
	UserID    int64     `json:"userId"    validate:"required,gt=0"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime"   validate:"required"`
}

type placeBookingsRequest struct {
	PlaceIDs []int64 `json:"placeIds" validate:"required,min=1,dive,gt=0"`
	Date     string  `json:"date"     validate:"omitempty,datetime=2006-01-02"`
}

type rescheduleRequest struct {
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime"   validate:"required"`
}
