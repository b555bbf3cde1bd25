package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/policy"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// ZoneService implements ports.ZoneService.
type ZoneService struct {
	store ports.Store
	now   func() time.Time
}

func NewZoneService(store ports.Store) *ZoneService {
	return &ZoneService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

var _ ports.ZoneService = (*ZoneService)(nil)

func validateZone(name string, price float64, maxPlaces int) error {
	switch {
	case strings.TrimSpace(name) == "":
		return domain.Errorf(domain.ErrInvalidArgument, "name is required")
	case price < 0:
		return domain.Errorf(domain.ErrInvalidArgument, "pricePerHour must not be negative")
	case maxPlaces < 0:
		return domain.Errorf(domain.ErrInvalidArgument, "maxPlaces must not be negative")
	}
	return nil
}

func (s *ZoneService) Create(ctx context.Context, actor domain.Principal, in ports.ZoneInput) (*domain.Zone, error) {
	_, res, err := workspaceResource(ctx, s.store, actor, in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ManageWorkspace, res); err != nil {
		return nil, err
	}
	if err := validateZone(in.Name, in.PricePerHour, in.MaxPlaces); err != nil {
		return nil, err
	}

	now := s.now()
	zone := &domain.Zone{
		WorkspaceID:  in.WorkspaceID,
		Name:         in.Name,
		Description:  in.Description,
		PricePerHour: in.PricePerHour,
		MaxPlaces:    in.MaxPlaces,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Zones().Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}
	return zone, nil
}

func (s *ZoneService) List(ctx context.Context, workspaceID int64) ([]*domain.Zone, error) {
	if _, err := s.store.Workspaces().GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.store.Zones().ListByWorkspace(ctx, workspaceID)
}

func (s *ZoneService) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	return s.store.Zones().GetByID(ctx, id)
}

func (s *ZoneService) Update(ctx context.Context, actor domain.Principal, id int64, in ports.ZonePatch) (*domain.Zone, error) {
	zone, err := s.authorizeZone(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}

	mergeString(&zone.Name, in.Name)
	mergeString(&zone.Description, in.Description)
	if in.PricePerHour != nil {
		zone.PricePerHour = *in.PricePerHour
	}
	if in.MaxPlaces != nil {
		zone.MaxPlaces = *in.MaxPlaces
	}
	if err := validateZone(zone.Name, zone.PricePerHour, zone.MaxPlaces); err != nil {
		return nil, err
	}
	zone.UpdatedAt = s.now()

	if err := s.store.Zones().Update(ctx, zone); err != nil {
		return nil, fmt.Errorf("update zone: %w", err)
	}
	return zone, nil
}

// Remove deletes the zone together with its places and their bookings.
func (s *ZoneService) Remove(ctx context.Context, actor domain.Principal, id int64) error {
	err := s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		if _, err := s.authorizeZone(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := tx.Bookings().DeleteByZone(ctx, id); err != nil {
			return err
		}
		if err := tx.Places().DeleteByZone(ctx, id); err != nil {
			return err
		}
		return tx.Zones().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("remove zone: %w", err)
	}
	return nil
}

func (s *ZoneService) authorizeZone(ctx context.Context, st ports.Store, actor domain.Principal, id int64) (*domain.Zone, error) {
	zone, err := st.Zones().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, res, err := workspaceResource(ctx, st, actor, zone.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ManageWorkspace, res); err != nil {
		return nil, err
	}
	return zone, nil
}
