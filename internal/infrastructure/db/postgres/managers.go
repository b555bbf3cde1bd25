package postgres

import (
	"context"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// activeManager is the single filter every manager read applies so
// tombstoned links never grant rights.
const activeManager = "deleted_at IS NULL"

type managerRepository struct {
	db querier
}

func (r *managerRepository) Add(ctx context.Context, m *domain.WorkspaceManager) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx,
		`INSERT INTO workspace_managers (workspace_id, manager_id, created_at) VALUES ($1, $2, $3)`,
		m.WorkspaceID, m.ManagerID, m.CreatedAt,
	)
	return mapError(err, domain.ErrManagerNotFound)
}

func (r *managerRepository) IsManager(ctx context.Context, workspaceID, userID int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM workspace_managers
		WHERE workspace_id = $1 AND manager_id = $2 AND `+activeManager+`)`,
		workspaceID, userID,
	).Scan(&ok)
	if err != nil {
		return false, mapError(err, domain.ErrManagerNotFound)
	}
	return ok, nil
}

func (r *managerRepository) ListManagers(ctx context.Context, workspaceID int64) ([]*domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+prefixed("u", userCols)+`
		FROM workspace_managers m
		JOIN users u ON u.id = m.manager_id
		WHERE m.workspace_id = $1 AND m.`+activeManager+`
		ORDER BY m.created_at, u.id`, workspaceID)
	if err != nil {
		return nil, mapError(err, domain.ErrManagerNotFound)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, domain.ErrManagerNotFound)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, domain.ErrManagerNotFound)
	}
	return users, nil
}

func (r *managerRepository) SoftDelete(ctx context.Context, workspaceID, managerID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE workspace_managers SET deleted_at = now()
		WHERE workspace_id = $1 AND manager_id = $2 AND `+activeManager,
		workspaceID, managerID,
	)
	return expectOne(tag, err, domain.ErrManagerNotFound)
}

func (r *managerRepository) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM workspace_managers WHERE workspace_id = $1`, workspaceID)
	return mapError(err, domain.ErrManagerNotFound)
}
