package handler

import (
	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// --- Request → Service input ---

func toSignUpInput(req signUpRequest) ports.SignUpInput {
	return ports.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Role:        domain.Role(req.Role),
		WorkspaceID: req.WorkspaceID,
	}
}

func toTelegramAuth(req telegramAuthRequest) domain.TelegramAuth {
	id := req.ID.String()
	if id == "" {
		id = req.TelegramID.String()
	}
	return domain.TelegramAuth{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		PhotoURL:  req.PhotoURL,
		AuthDate:  req.AuthDate.String(),
		Hash:      req.Hash,
	}
}

func toProfileUpdate(req profileUpdateRequest) ports.ProfileUpdate {
	return ports.ProfileUpdate{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Password:   req.Password,
	}
}

func toWorkspaceInput(req workspaceRequest) ports.WorkspaceInput {
	return ports.WorkspaceInput{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Capacity:    req.Capacity,
		Amenities:   req.Amenities,
	}
}

func toWorkspacePatch(req workspacePatchRequest) ports.WorkspacePatch {
	return ports.WorkspacePatch{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Capacity:    req.Capacity,
		Amenities:   req.Amenities,
	}
}

func toZoneInput(req zoneRequest) ports.ZoneInput {
	return ports.ZoneInput{
		WorkspaceID:  req.WorkspaceID,
		Name:         req.Name,
		Description:  req.Description,
		PricePerHour: req.PricePerHour,
		MaxPlaces:    req.MaxPlaces,
	}
}

func toZonePatch(req zonePatchRequest) ports.ZonePatch {
	return ports.ZonePatch{
		Name:         req.Name,
		Description:  req.Description,
		PricePerHour: req.PricePerHour,
		MaxPlaces:    req.MaxPlaces,
	}
}

func toPlaceInput(req placeRequest) ports.PlaceInput {
	return ports.PlaceInput{
		ZoneID:      req.ZoneID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.PlaceStatus(req.Status),
	}
}

func toPlacePatch(req placePatchRequest) ports.PlacePatch {
	patch := ports.PlacePatch{
		ZoneID:      req.ZoneID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.PlaceStatus(*req.Status)
		patch.Status = &status
	}
	return patch
}

// --- Service result → HTTP response ---

func toTokenResponse(p *domain.TokenPair) tokenResponse {
	return tokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}
