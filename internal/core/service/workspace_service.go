package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/policy"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// DefaultRemoveTimeout bounds the workspace deletion cascade.
const DefaultRemoveTimeout = 30 * time.Second

// WorkspaceService implements ports.WorkspaceService.
type WorkspaceService struct {
	store         ports.Store
	removeTimeout time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

// NewWorkspaceService returns a WorkspaceService. A non-positive removeTimeout
// selects DefaultRemoveTimeout.
func NewWorkspaceService(store ports.Store, removeTimeout time.Duration, log zerolog.Logger) *WorkspaceService {
	if removeTimeout <= 0 {
		removeTimeout = DefaultRemoveTimeout
	}
	return &WorkspaceService{
		store:         store,
		removeTimeout: removeTimeout,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.WorkspaceService = (*WorkspaceService)(nil)

func (s *WorkspaceService) Create(ctx context.Context, actor domain.Principal, in ports.WorkspaceInput) (*domain.Workspace, error) {
	if err := policy.Authorize(actor, policy.CreateWorkspace, policy.Resource{}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "name is required")
	}
	if in.Capacity < 0 {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "capacity must not be negative")
	}

	now := s.now()
	ws := &domain.Workspace{
		Name:        in.Name,
		Address:     in.Address,
		Description: in.Description,
		Capacity:    in.Capacity,
		Amenities:   in.Amenities,
		OwnerID:     actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ws.Amenities == nil {
		ws.Amenities = []string{}
	}
	if err := s.store.Workspaces().Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return ws, nil
}

// List hides unapproved workspaces from everyone but admins, except for the
// caller's own memberships.
func (s *WorkspaceService) List(ctx context.Context, actor domain.Principal, f ports.WorkspaceFilter) (*ports.WorkspacePage, error) {
	if !actor.Role.IsAdmin() && f.MemberID != actor.UserID {
		approved := true
		f.Approved = &approved
	}
	f.Offset, f.Limit = page(f.Offset, f.Limit)
	items, total, err := s.store.Workspaces().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return &ports.WorkspacePage{Items: items, Total: total}, nil
}

func (s *WorkspaceService) Get(ctx context.Context, id int64) (*domain.Workspace, error) {
	return s.store.Workspaces().GetByID(ctx, id)
}

func (s *WorkspaceService) Update(ctx context.Context, actor domain.Principal, id int64, in ports.WorkspacePatch) (*domain.Workspace, error) {
	ws, res, err := workspaceResource(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ManageWorkspace, res); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "name must not be empty")
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "capacity must not be negative")
	}

	mergeString(&ws.Name, in.Name)
	mergeString(&ws.Address, in.Address)
	mergeString(&ws.Description, in.Description)
	if in.Capacity != nil {
		ws.Capacity = *in.Capacity
	}
	if in.Amenities != nil {
		ws.Amenities = in.Amenities
	}
	ws.UpdatedAt = s.now()

	if err := s.store.Workspaces().Update(ctx, ws); err != nil {
		return nil, fmt.Errorf("update workspace: %w", err)
	}
	return ws, nil
}

// Approve sets the approval flag. Setting it to its current value is a no-op.
func (s *WorkspaceService) Approve(ctx context.Context, actor domain.Principal, id int64, approved bool) (*domain.Workspace, error) {
	ws, err := s.store.Workspaces().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ApproveWorkspace, policy.Resource{WorkspaceOwnerID: ws.OwnerID}); err != nil {
		return nil, err
	}
	if ws.Approved == approved {
		return ws, nil
	}
	if err := s.store.Workspaces().SetApproved(ctx, id, approved); err != nil {
		return nil, fmt.Errorf("approve workspace: %w", err)
	}
	ws.Approved = approved
	s.log.Info().Int64("workspace_id", id).Bool("approved", approved).Int64("actor_id", actor.UserID).Msg("workspace approval changed")
	return ws, nil
}

// Remove deletes the workspace and everything below it in one transaction:
// bookings, places, zones, manager links, then the workspace row.
func (s *WorkspaceService) Remove(ctx context.Context, actor domain.Principal, id int64) error {
	err := s.store.InTx(ctx, ports.TxOptions{Timeout: s.removeTimeout}, func(ctx context.Context, tx ports.Store) error {
		_, res, err := workspaceResource(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.DeleteWorkspace, res); err != nil {
			return err
		}

		if err := tx.Bookings().DeleteByWorkspace(ctx, id); err != nil {
			return fmt.Errorf("delete bookings: %w", err)
		}
		if err := tx.Places().DeleteByWorkspace(ctx, id); err != nil {
			return fmt.Errorf("delete places: %w", err)
		}
		if err := tx.Zones().DeleteByWorkspace(ctx, id); err != nil {
			return fmt.Errorf("delete zones: %w", err)
		}
		if err := tx.Managers().DeleteByWorkspace(ctx, id); err != nil {
			return fmt.Errorf("delete managers: %w", err)
		}
		if err := tx.Workspaces().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete workspace: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	s.log.Info().Int64("workspace_id", id).Int64("actor_id", actor.UserID).Msg("workspace removed")
	return nil
}

func (s *WorkspaceService) AddManager(ctx context.Context, actor domain.Principal, workspaceID, managerID int64) (*domain.WorkspaceManager, error) {
	link := &domain.WorkspaceManager{WorkspaceID: workspaceID, ManagerID: managerID, CreatedAt: s.now()}
	err := s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		_, res, err := workspaceResource(ctx, tx, actor, workspaceID)
		if err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.ManageManagers, res); err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, managerID); err != nil {
			return err
		}
		return tx.Managers().Add(ctx, link)
	})
	if err != nil {
		return nil, fmt.Errorf("add manager: %w", err)
	}
	return link, nil
}

func (s *WorkspaceService) RemoveManager(ctx context.Context, actor domain.Principal, workspaceID, managerID int64) error {
	_, res, err := workspaceResource(ctx, s.store, actor, workspaceID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ManageManagers, res); err != nil {
		return err
	}
	if err := s.store.Managers().SoftDelete(ctx, workspaceID, managerID); err != nil {
		return fmt.Errorf("remove manager: %w", err)
	}
	return nil
}

func (s *WorkspaceService) ListManagers(ctx context.Context, actor domain.Principal, workspaceID int64) ([]*domain.User, error) {
	_, res, err := workspaceResource(ctx, s.store, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ManageWorkspace, res); err != nil {
		return nil, err
	}
	return s.store.Managers().ListManagers(ctx, workspaceID)
}
