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

// PlaceService implements ports.PlaceService.
type PlaceService struct {
	store ports.Store
	now   func() time.Time
}

func NewPlaceService(store ports.Store) *PlaceService {
	return &PlaceService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

var _ ports.PlaceService = (*PlaceService)(nil)

func (s *PlaceService) Create(ctx context.Context, actor domain.Principal, in ports.PlaceInput) (*domain.Place, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "name is required")
	}
	status := in.Status
	if status == "" {
		status = domain.PlaceAvailable
	}
	if !status.Valid() {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "unknown place status %q", in.Status)
	}

	now := s.now()
	place := &domain.Place{
		ZoneID:      in.ZoneID,
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		if err := s.authorizeTarget(ctx, tx, actor, in.ZoneID); err != nil {
			return err
		}
		return tx.Places().Create(ctx, place)
	})
	if err != nil {
		return nil, fmt.Errorf("create place: %w", err)
	}
	return place, nil
}

func (s *PlaceService) List(ctx context.Context, f ports.PlaceFilter) ([]*domain.Place, error) {
	f.Offset, f.Limit = page(f.Offset, f.Limit)
	return s.store.Places().List(ctx, f)
}

func (s *PlaceService) Get(ctx context.Context, id int64) (*domain.Place, error) {
	return s.store.Places().GetByID(ctx, id)
}

func (s *PlaceService) Update(ctx context.Context, actor domain.Principal, id int64, in ports.PlacePatch) (*domain.Place, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "name must not be empty")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "unknown place status %q", *in.Status)
	}

	var place *domain.Place
	err := s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		var err error
		if place, err = s.authorizePlace(ctx, tx, actor, id); err != nil {
			return err
		}
		if in.ZoneID != nil && (place.ZoneID == nil || *place.ZoneID != *in.ZoneID) {
			if err := s.authorizeTarget(ctx, tx, actor, in.ZoneID); err != nil {
				return err
			}
			zoneID := *in.ZoneID
			place.ZoneID = &zoneID
		}
		mergeString(&place.Name, in.Name)
		mergeString(&place.Description, in.Description)
		if in.Status != nil {
			place.Status = *in.Status
		}
		place.UpdatedAt = s.now()
		return tx.Places().Update(ctx, place)
	})
	if err != nil {
		return nil, fmt.Errorf("update place: %w", err)
	}
	return place, nil
}

// Remove deletes the place and its bookings.
func (s *PlaceService) Remove(ctx context.Context, actor domain.Principal, id int64) error {
	err := s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		if _, err := s.authorizePlace(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := tx.Bookings().DeleteByPlace(ctx, id); err != nil {
			return err
		}
		return tx.Places().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("remove place: %w", err)
	}
	return nil
}

func (s *PlaceService) authorizePlace(ctx context.Context, st ports.Store, actor domain.Principal, id int64) (*domain.Place, error) {
	place, err := st.Places().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, res, err := placeResource(ctx, st, actor, place)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ManageWorkspace, res); err != nil {
		return nil, err
	}
	return place, nil
}

// authorizeTarget checks that actor may put a place into zoneID and that the
// zone still has room for it.
func (s *PlaceService) authorizeTarget(ctx context.Context, st ports.Store, actor domain.Principal, zoneID *int64) error {
	if zoneID == nil {
		return policy.Authorize(actor, policy.ManageWorkspace, policy.Resource{})
	}
	zone, err := st.Zones().GetByID(ctx, *zoneID)
	if err != nil {
		return err
	}
	_, res, err := workspaceResource(ctx, st, actor, zone.WorkspaceID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ManageWorkspace, res); err != nil {
		return err
	}
	if zone.MaxPlaces > 0 {
		n, err := st.Places().CountByZone(ctx, zone.ID)
		if err != nil {
			return err
		}
		if n >= zone.MaxPlaces {
			return domain.ErrZoneFull
		}
	}
	return nil
}
