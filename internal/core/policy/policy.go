// Package policy decides which principal may perform which action. It is a
// pure capability check: callers gather the resource context (ownership,
// manager links, target roles) and must call Authorize before any write.
package policy

import (
	"github.com/spacehub/coworking-api/internal/core/domain"
)

// Action names a guarded operation.
type Action string

const (
	SetBan           Action = "user:set-ban"
	ListUsers        Action = "user:list"
	CreateUser       Action = "user:create"
	CreateWorkspace  Action = "workspace:create"
	ApproveWorkspace Action = "workspace:approve"
	ManageWorkspace  Action = "workspace:manage"
	ManageManagers   Action = "workspace:managers"
	DeleteWorkspace  Action = "workspace:delete"
	ManageBooking    Action = "booking:manage"
)

// Resource is the context an action is evaluated against. Only the fields
// relevant to the action need to be set.
type Resource struct {
	// WorkspaceOwnerID is the owner of the workspace the action targets.
	WorkspaceOwnerID int64
	// Manager is true when the actor holds an active manager link on that workspace.
	Manager bool

	// TargetUserID and TargetRole describe the user an action is applied to,
	// or the role requested for a user being created.
	TargetUserID int64
	TargetRole   domain.Role

	// BookingUserID is the owner of the booking being changed.
	BookingUserID int64
}

func (r Resource) ownedBy(p domain.Principal) bool {
	return r.WorkspaceOwnerID != 0 && r.WorkspaceOwnerID == p.UserID
}

// CanPerform reports whether actor may perform action on res.
func CanPerform(actor domain.Principal, action Action, res Resource) bool {
	super := actor.Role == domain.RoleSuperAdmin

	switch action {
	case SetBan:
		if !actor.Role.IsAdmin() || actor.UserID == res.TargetUserID {
			return false
		}
		switch res.TargetRole {
		case domain.RoleSuperAdmin:
			return false
		case domain.RoleAdmin:
			return super
		}
		return true

	case ListUsers:
		return actor.Role.IsAdmin() || actor.Role == domain.RoleManager

	case CreateUser:
		switch actor.Role {
		case domain.RoleSuperAdmin:
			return res.TargetRole.Valid() && res.TargetRole != domain.RoleSuperAdmin
		case domain.RoleAdmin:
			return res.TargetRole == domain.RoleManager && (res.ownedBy(actor) || res.Manager)
		}
		return false

	case CreateWorkspace:
		return actor.Role.IsAdmin()

	case ApproveWorkspace:
		return super || (actor.Role == domain.RoleAdmin && !res.ownedBy(actor))

	case ManageWorkspace:
		return super || res.ownedBy(actor) || res.Manager

	case ManageManagers, DeleteWorkspace:
		return super || res.ownedBy(actor)

	case ManageBooking:
		return super || res.BookingUserID == actor.UserID || res.ownedBy(actor) || res.Manager
	}
	return false
}

// Authorize is CanPerform returning domain.ErrPermissionDenied on refusal.
func Authorize(actor domain.Principal, action Action, res Resource) error {
	if !CanPerform(actor, action, res) {
		return domain.Errorf(domain.ErrPermissionDenied, "permission denied: %s", action)
	}
	return nil
}
