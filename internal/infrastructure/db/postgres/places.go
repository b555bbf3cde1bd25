package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

type placeRepository struct {
	db querier
}

const placeCols = `id, zone_id, name, description, status, created_at, updated_at`

func scanPlace(row pgx.Row) (*domain.Place, error) {
	var p domain.Place
	err := row.Scan(&p.ID, &p.ZoneID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *placeRepository) Create(ctx context.Context, p *domain.Place) error {
	const q = `INSERT INTO places (zone_id, name, description, status, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6)
	RETURNING id`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, q, p.ZoneID, p.Name, p.Description, p.Status, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	return mapError(err, domain.ErrZoneNotFound)
}

func (r *placeRepository) GetByID(ctx context.Context, id int64) (*domain.Place, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanPlace(r.db.QueryRow(ctx, `SELECT `+placeCols+` FROM places WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrPlaceNotFound)
	}
	return p, nil
}

func (r *placeRepository) List(ctx context.Context, f ports.PlaceFilter) ([]*domain.Place, error) {
	var c conds
	if f.ZoneID != nil {
		c.and("p.zone_id = " + c.arg(*f.ZoneID))
	}
	if f.WorkspaceID != 0 {
		c.and("p.zone_id IN (SELECT id FROM workspace_zones WHERE workspace_id = " + c.arg(f.WorkspaceID) + ")")
	}
	if f.Status != "" {
		c.and("p.status = " + c.arg(f.Status))
	}
	q := `SELECT ` + prefixed("p", placeCols) + ` FROM places p` + c.where() + ` ORDER BY p.id`
	q += c.page(f.Offset, f.Limit)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, q, c.args...)
	if err != nil {
		return nil, mapError(err, domain.ErrPlaceNotFound)
	}
	defer rows.Close()

	places := []*domain.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, mapError(err, domain.ErrPlaceNotFound)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, domain.ErrPlaceNotFound)
	}
	return places, nil
}

func (r *placeRepository) CountByZone(ctx context.Context, zoneID int64) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM places WHERE zone_id = $1`, zoneID).Scan(&n); err != nil {
		return 0, mapError(err, domain.ErrZoneNotFound)
	}
	return n, nil
}

func (r *placeRepository) Update(ctx context.Context, p *domain.Place) error {
	const q = `UPDATE places SET zone_id = $2, name = $3, description = $4, status = $5, updated_at = $6
	WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, q, p.ID, p.ZoneID, p.Name, p.Description, p.Status, p.UpdatedAt)
	return expectOne(tag, err, domain.ErrPlaceNotFound)
}

func (r *placeRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	return expectOne(tag, err, domain.ErrPlaceNotFound)
}

func (r *placeRepository) DeleteByZone(ctx context.Context, zoneID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM places WHERE zone_id = $1`, zoneID)
	return mapError(err, domain.ErrPlaceNotFound)
}

func (r *placeRepository) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx,
		`DELETE FROM places WHERE zone_id IN (SELECT id FROM workspace_zones WHERE workspace_id = $1)`,
		workspaceID,
	)
	return mapError(err, domain.ErrPlaceNotFound)
}
