package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

type zoneRepository struct {
	db querier
}

const zoneCols = `id, workspace_id, name, description, price_per_hour, max_places, created_at, updated_at`

func scanZone(row pgx.Row) (*domain.Zone, error) {
	var z domain.Zone
	err := row.Scan(&z.ID, &z.WorkspaceID, &z.Name, &z.Description, &z.PricePerHour, &z.MaxPlaces, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *zoneRepository) Create(ctx context.Context, z *domain.Zone) error {
	const q = `INSERT INTO workspace_zones (
		workspace_id, name, description, price_per_hour, max_places, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7)
	RETURNING id`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, q,
		z.WorkspaceID, z.Name, z.Description, z.PricePerHour, z.MaxPlaces, z.CreatedAt, z.UpdatedAt,
	).Scan(&z.ID)
	return mapError(err, domain.ErrWorkspaceNotFound)
}

func (r *zoneRepository) GetByID(ctx context.Context, id int64) (*domain.Zone, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	z, err := scanZone(r.db.QueryRow(ctx, `SELECT `+zoneCols+` FROM workspace_zones WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrZoneNotFound)
	}
	return z, nil
}

func (r *zoneRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]*domain.Zone, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+zoneCols+` FROM workspace_zones WHERE workspace_id = $1 ORDER BY id`, workspaceID)
	if err != nil {
		return nil, mapError(err, domain.ErrZoneNotFound)
	}
	defer rows.Close()

	zones := []*domain.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, mapError(err, domain.ErrZoneNotFound)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, domain.ErrZoneNotFound)
	}
	return zones, nil
}

func (r *zoneRepository) Update(ctx context.Context, z *domain.Zone) error {
	const q = `UPDATE workspace_zones SET
		name = $2, description = $3, price_per_hour = $4, max_places = $5, updated_at = $6
	WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, q, z.ID, z.Name, z.Description, z.PricePerHour, z.MaxPlaces, z.UpdatedAt)
	return expectOne(tag, err, domain.ErrZoneNotFound)
}

func (r *zoneRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM workspace_zones WHERE id = $1`, id)
	return expectOne(tag, err, domain.ErrZoneNotFound)
}

func (r *zoneRepository) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM workspace_zones WHERE workspace_id = $1`, workspaceID)
	return mapError(err, domain.ErrZoneNotFound)
}
