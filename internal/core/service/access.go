package service

import (
	"context"
	"strings"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/policy"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// page clamps caller supplied paging to sane bounds.
func page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// workspaceResource loads workspaceID and the policy context of actor on it.
func workspaceResource(ctx context.Context, st ports.Store, actor domain.Principal, workspaceID int64) (*domain.Workspace, policy.Resource, error) {
	ws, err := st.Workspaces().GetByID(ctx, workspaceID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	res := policy.Resource{WorkspaceOwnerID: ws.OwnerID}
	if actor.UserID != 0 && actor.UserID != ws.OwnerID {
		ok, err := st.Managers().IsManager(ctx, workspaceID, actor.UserID)
		if err != nil {
			return nil, policy.Resource{}, err
		}
		res.Manager = ok
	}
	return ws, res, nil
}

// placeResource resolves the zone of p and actor's policy context on the
// owning workspace. Places outside any zone yield an empty resource, which
// only a super admin can manage.
func placeResource(ctx context.Context, st ports.Store, actor domain.Principal, p *domain.Place) (*domain.Zone, policy.Resource, error) {
	if p.ZoneID == nil {
		return nil, policy.Resource{}, nil
	}
	zone, err := st.Zones().GetByID(ctx, *p.ZoneID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	_, res, err := workspaceResource(ctx, st, actor, zone.WorkspaceID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	return zone, res, nil
}
