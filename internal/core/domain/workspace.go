package domain

import "time"

// Workspace is a coworking space owned by a user. New workspaces start unapproved.
type Workspace struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	Amenities   []string  `json:"amenities"`
	OwnerID     int64     `json:"ownerId"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WorkspaceManager grants a user manager rights over a workspace.
// A non-nil DeletedAt is a tombstone: the link is kept but no longer active.
type WorkspaceManager struct {
	WorkspaceID int64      `json:"workspaceId"`
	ManagerID   int64      `json:"managerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Active reports whether the link has not been tombstoned.
func (m WorkspaceManager) Active() bool { return m.DeletedAt == nil }

// Zone is a pricing unit inside a workspace.
type Zone struct {
	ID           int64     `json:"id"`
	WorkspaceID  int64     `json:"workspaceId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PricePerHour float64   `json:"pricePerHour"`
	MaxPlaces    int       `json:"maxPlaces"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PlaceStatus is the operational state of a bookable place.
type PlaceStatus string

const (
	PlaceAvailable   PlaceStatus = "AVAILABLE"
	PlaceOccupied    PlaceStatus = "OCCUPIED"
	PlaceMaintenance PlaceStatus = "MAINTENANCE"
)

// Valid reports whether s is a known place status.
func (s PlaceStatus) Valid() bool {
	switch s {
	case PlaceAvailable, PlaceOccupied, PlaceMaintenance:
		return true
	}
	return false
}

// Place is a single bookable desk or room. ZoneID is nil for places outside any zone.
type Place struct {
	ID          int64       `json:"id"`
	ZoneID      *int64      `json:"zoneId,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      PlaceStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
