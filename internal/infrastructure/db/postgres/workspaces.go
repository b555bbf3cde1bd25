package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

type workspaceRepository struct {
	db querier
}

const workspaceCols = `id, name, address, description, capacity, amenities, owner_id, approved, created_at, updated_at`

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var w domain.Workspace
	err := row.Scan(
		&w.ID, &w.Name, &w.Address, &w.Description, &w.Capacity, &w.Amenities,
		&w.OwnerID, &w.Approved, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if w.Amenities == nil {
		w.Amenities = []string{}
	}
	return &w, nil
}

func (r *workspaceRepository) Create(ctx context.Context, w *domain.Workspace) error {
	const q = `INSERT INTO workspaces (
		name, address, description, capacity, amenities, owner_id, approved, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	RETURNING id`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, q,
		w.Name, w.Address, w.Description, w.Capacity, w.Amenities, w.OwnerID, w.Approved, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	return mapError(err, domain.ErrWorkspaceNotFound)
}

func (r *workspaceRepository) GetByID(ctx context.Context, id int64) (*domain.Workspace, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	w, err := scanWorkspace(r.db.QueryRow(ctx, `SELECT `+workspaceCols+` FROM workspaces WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrWorkspaceNotFound)
	}
	return w, nil
}

func (r *workspaceRepository) List(ctx context.Context, f ports.WorkspaceFilter) ([]*domain.Workspace, int64, error) {
	var c conds
	if f.Query != "" {
		c.and("w.name ILIKE " + c.arg("%"+f.Query+"%"))
	}
	if f.OwnerID != 0 {
		c.and("w.owner_id = " + c.arg(f.OwnerID))
	}
	if f.MemberID != 0 {
		p := c.arg(f.MemberID)
		c.and(`(w.owner_id = ` + p + ` OR EXISTS (
			SELECT 1 FROM workspace_managers m
			WHERE m.workspace_id = w.id AND m.manager_id = ` + p + ` AND m.` + activeManager + `))`)
	}
	if f.Approved != nil {
		c.and("w.approved = " + c.arg(*f.Approved))
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM workspaces w`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, domain.ErrWorkspaceNotFound)
	}

	q := `SELECT ` + prefixed("w", workspaceCols) + ` FROM workspaces w` + c.where() + ` ORDER BY w.id`
	q += c.page(f.Offset, f.Limit)
	rows, err := r.db.Query(ctx, q, c.args...)
	if err != nil {
		return nil, 0, mapError(err, domain.ErrWorkspaceNotFound)
	}
	defer rows.Close()

	items := []*domain.Workspace{}
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, 0, mapError(err, domain.ErrWorkspaceNotFound)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, domain.ErrWorkspaceNotFound)
	}
	return items, total, nil
}

func (r *workspaceRepository) Update(ctx context.Context, w *domain.Workspace) error {
	const q = `UPDATE workspaces SET
		name = $2, address = $3, description = $4, capacity = $5, amenities = $6, updated_at = $7
	WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, q, w.ID, w.Name, w.Address, w.Description, w.Capacity, w.Amenities, w.UpdatedAt)
	return expectOne(tag, err, domain.ErrWorkspaceNotFound)
}

func (r *workspaceRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE workspaces SET approved = $2, updated_at = now() WHERE id = $1`, id, approved)
	return expectOne(tag, err, domain.ErrWorkspaceNotFound)
}

func (r *workspaceRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	return expectOne(tag, err, domain.ErrWorkspaceNotFound)
}
