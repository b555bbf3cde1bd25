package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spacehub/coworking-api/internal/core/ports"
)

// ZoneHandler handles zone routes.
type ZoneHandler struct {
	service ports.ZoneService
}

func NewZoneHandler(service ports.ZoneService) *ZoneHandler {
	return &ZoneHandler{service: service}
}

// Create handles POST /zones.
//
// @Summary      Create a zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      zoneRequest  true  "Zone"
// @Success      201   {object}  domain.Zone
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /zones [post]
func (h *ZoneHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req zoneRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	zone, err := h.service.Create(c.Request().Context(), actor, toZoneInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, zone)
}

// List handles GET /zones?workspace_id=.
//
// @Summary      List the zones of a workspace
// @Tags         zones
// @Produce      json
// @Security     BearerAuth
// @Param        workspace_id  query     int  true  "Workspace ID"
// @Success      200           {array}   domain.Zone
// @Failure      404           {object}  errorResponse
// @Router       /zones [get]
func (h *ZoneHandler) List(c echo.Context) error {
	var workspaceID int64
	if err := echo.QueryParamsBinder(c).MustInt64("workspace_id", &workspaceID).BindError(); err != nil || workspaceID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "workspace_id is required")
	}
	zones, err := h.service.List(c.Request().Context(), workspaceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, zones)
}

// Get handles GET /zones/:id.
//
// @Summary      Get a zone
// @Tags         zones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Zone ID"
// @Success      200  {object}  domain.Zone
// @Failure      404  {object}  errorResponse
// @Router       /zones/{id} [get]
func (h *ZoneHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	zone, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, zone)
}

// Update handles PATCH /zones/:id.
//
// @Summary      Update a zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Zone ID"
// @Param        body  body      zonePatchRequest  true  "Fields to change"
// @Success      200   {object}  domain.Zone
// @Failure      403   {object}  errorResponse
// @Router       /zones/{id} [patch]
func (h *ZoneHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req zonePatchRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	zone, err := h.service.Update(c.Request().Context(), actor, id, toZonePatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, zone)
}

// Remove handles DELETE /zones/:id.
//
// @Summary      Delete a zone with its places and bookings
// @Tags         zones
// @Security     BearerAuth
// @Param        id   path  int  true  "Zone ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Router       /zones/{id} [delete]
func (h *ZoneHandler) Remove(c echo.Context) error {
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
