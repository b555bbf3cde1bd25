package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// PlaceHandler handles place routes.
type PlaceHandler struct {
	service ports.PlaceService
}

func NewPlaceHandler(service ports.PlaceService) *PlaceHandler {
	return &PlaceHandler{service: service}
}

// Create handles POST /places.
//
// @Summary      Create a place
// @Tags         places
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeRequest  true  "Place"
// @Success      201   {object}  domain.Place
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /places [post]
func (h *PlaceHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req placeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	place, err := h.service.Create(c.Request().Context(), actor, toPlaceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, place)
}

// List handles GET /places.
//
// @Summary      List places
// @Tags         places
// @Produce      json
// @Security     BearerAuth
// @Param        zone_id       query     int     false  "Zone filter"
// @Param        workspace_id  query     int     false  "Workspace filter"
// @Param        status        query     string  false  "Status filter"
// @Param        offset        query     int     false  "Offset"
// @Param        limit         query     int     false  "Page size (max 100)"
// @Success      200           {array}   domain.Place
// @Router       /places [get]
func (h *PlaceHandler) List(c echo.Context) error {
	var (
		f      ports.PlaceFilter
		zoneID int64
		status string
	)
	err := echo.QueryParamsBinder(c).
		Int64("zone_id", &zoneID).
		Int64("workspace_id", &f.WorkspaceID).
		String("status", &status).
		Int("offset", &f.Offset).
		Int("limit", &f.Limit).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if zoneID > 0 {
		f.ZoneID = &zoneID
	}
	f.Status = domain.PlaceStatus(status)
	if f.Status != "" && !f.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown place status")
	}

	places, err := h.service.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, places)
}

// Get handles GET /places/:id.
//
// @Summary      Get a place
// @Tags         places
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Place ID"
// @Success      200  {object}  domain.Place
// @Failure      404  {object}  errorResponse
// @Router       /places/{id} [get]
func (h *PlaceHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	place, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, place)
}

// Update handles PATCH /places/:id.
//
// @Summary      Update a place
// @Tags         places
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Place ID"
// @Param        body  body      placePatchRequest  true  "Fields to change"
// @Success      200   {object}  domain.Place
// @Failure      403   {object}  errorResponse
// @Router       /places/{id} [patch]
func (h *PlaceHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req placePatchRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	place, err := h.service.Update(c.Request().Context(), actor, id, toPlacePatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, place)
}

// Remove handles DELETE /places/:id.
//
// @Summary      Delete a place and its bookings
// @Tags         places
// @Security     BearerAuth
// @Param        id   path  int  true  "Place ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Router       /places/{id} [delete]
func (h *PlaceHandler) Remove(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
