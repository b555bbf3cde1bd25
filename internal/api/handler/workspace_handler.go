package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spacehub/coworking-api/internal/core/ports"
)

// WorkspaceHandler handles workspace and manager routes.
type WorkspaceHandler struct {
	service ports.WorkspaceService
}

func NewWorkspaceHandler(service ports.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

// Create handles POST /workspaces.
//
// @Summary      Create a workspace
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      workspaceRequest  true  "Workspace"
// @Success      201   {object}  domain.Workspace
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /workspaces [post]
func (h *WorkspaceHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req workspaceRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ws, err := h.service.Create(c.Request().Context(), actor, toWorkspaceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ws)
}

// List handles GET /workspaces.
//
// @Summary      List workspaces
// @Tags         workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        q         query     string  false  "Name search"
// @Param        approved  query     bool    false  "Approval filter (admins only)"
// @Param        owner_id  query     int     false  "Owner filter"
// @Param        offset    query     int     false  "Offset"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  workspaceListResponse
// @Router       /workspaces [get]
func (h *WorkspaceHandler) List(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var f ports.WorkspaceFilter
	b := echo.QueryParamsBinder(c).
		String("q", &f.Query).
		Int64("owner_id", &f.OwnerID).
		Int("offset", &f.Offset).
		Int("limit", &f.Limit)
	if c.QueryParam("approved") != "" {
		var approved bool
		b.Bool("approved", &approved)
		f.Approved = &approved
	}
	if err := b.BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	page, err := h.service.List(c.Request().Context(), actor, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, workspaceListResponse{Items: page.Items, Total: page.Total})
}

// Get handles GET /workspaces/:id.
//
// @Summary      Get a workspace
// @Tags         workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Workspace ID"
// @Success      200  {object}  domain.Workspace
// @Failure      404  {object}  errorResponse
// @Router       /workspaces/{id} [get]
func (h *WorkspaceHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ws, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws)
}

// Update handles PATCH /workspaces/:id.
//
// @Summary      Update a workspace
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Workspace ID"
// @Param        body  body      workspacePatchRequest  true  "Fields to change"
// @Success      200   {object}  domain.Workspace
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /workspaces/{id} [patch]
func (h *WorkspaceHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req workspacePatchRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ws, err := h.service.Update(c.Request().Context(), actor, id, toWorkspacePatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws)
}

// Approve handles PATCH /workspaces/:id/approve.
//
// @Summary      Approve or unapprove a workspace
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Workspace ID"
// @Param        body  body      approveRequest  true  "Approval state"
// @Success      200   {object}  domain.Workspace
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /workspaces/{id}/approve [patch]
func (h *WorkspaceHandler) Approve(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req approveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ws, err := h.service.Approve(c.Request().Context(), actor, id, *req.Approved)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws)
}

// Remove handles DELETE /workspaces/:id.
//
// @Summary      Delete a workspace and everything in it
// @Tags         workspaces
// @Security     BearerAuth
// @Param        id   path  int  true  "Workspace ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /workspaces/{id} [delete]
func (h *WorkspaceHandler) Remove(c echo.Context) error {
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

// AddManager handles POST /workspaces/:id/managers.
//
// @Summary      Add a workspace manager
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Workspace ID"
// @Param        body  body      addManagerRequest  true  "Manager"
// @Success      201   {object}  domain.WorkspaceManager
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /workspaces/{id}/managers [post]
func (h *WorkspaceHandler) AddManager(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req addManagerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	link, err := h.service.AddManager(c.Request().Context(), actor, id, req.ManagerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, link)
}

// ListManagers handles GET /workspaces/:id/managers.
//
// @Summary      List workspace managers
// @Tags         workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Workspace ID"
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /workspaces/{id}/managers [get]
func (h *WorkspaceHandler) ListManagers(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	users, err := h.service.ListManagers(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// RemoveManager handles DELETE /workspaces/:id/managers/:managerId.
//
// @Summary      Remove a workspace manager
// @Tags         workspaces
// @Security     BearerAuth
// @Param        id         path  int  true  "Workspace ID"
// @Param        managerId  path  int  true  "Manager user ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /workspaces/{id}/managers/{managerId} [delete]
func (h *WorkspaceHandler) RemoveManager(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	managerID, err := paramID(c, "managerId")
	if err != nil {
		return err
	}
	if err := h.service.RemoveManager(c.Request().Context(), actor, id, managerID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
