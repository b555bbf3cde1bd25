package domain

import "time"

// Role is one of the seeded reference roles.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// roleIDs mirrors the seed order of the roles table.
var roleIDs = map[Role]int64{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleManager:    3,
	RoleSuperAdmin: 4,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleIDs[r]
	return ok
}

// ID returns the roles.id value for r, or 0 when r is unknown.
func (r Role) ID() int64 { return roleIDs[r] }

// RoleByID is the inverse of Role.ID.
func RoleByID(id int64) (Role, bool) {
	for r, rid := range roleIDs {
		if rid == id {
			return r, true
		}
	}
	return "", false
}

// IsAdmin reports whether r is ADMIN or SUPER_ADMIN.
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleSuperAdmin }

// User models an account of the platform.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	FirstName        string    `json:"firstName"`
	MiddleName       string    `json:"middleName,omitempty"`
	LastName         string    `json:"lastName"`
	Phone            string    `json:"phone"`
	Role             Role      `json:"role"`
	Banned           bool      `json:"banned"`
	ReasonBanned     *string   `json:"reasonBanned,omitempty"`
	TelegramID       *string   `json:"telegramId,omitempty"`
	TelegramUsername *string   `json:"telegramUsername,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Principal is the authenticated caller, populated once by the auth
// middleware and passed explicitly into every service call.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

// Claims is the identity payload carried by access and refresh tokens.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// Principal converts verified claims into a request principal.
func (c Claims) Principal() Principal {
	return Principal{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenPair is the result of every successful authentication.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
