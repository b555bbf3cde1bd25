package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spacehub/coworking-api/internal/api/middleware"
	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// CookieOptions controls the refresh token cookie written on authentication.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieOptions
}

func NewAuthHandler(authService ports.AuthService, cookie CookieOptions) *AuthHandler {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = middleware.DefaultRefreshCookieMaxAge
	}
	return &AuthHandler{authService: authService, cookie: cookie}
}

// SignUp creates a new user account. Anonymous callers always get the USER
// role; authenticated admins may request a role and workspace.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "User registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	var actor *domain.Principal
	if p, ok := middleware.PrincipalFrom(c); ok {
		actor = &p
	}

	pair, err := h.authService.SignUp(c.Request().Context(), actor, toSignUpInput(req))
	if err != nil {
		return err
	}
	// Accounts created by an admin belong to someone else; keep the admin's session.
	if actor == nil {
		h.setRefreshCookie(c, pair.RefreshToken)
	}
	return c.JSON(http.StatusCreated, toTokenResponse(pair))
}

// SignIn authenticates a user with email and password.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

// Refresh rotates the token pair. The refresh token is read from the body or,
// when absent there, from the refresh cookie.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	token := req.RefreshToken
	if token == "" {
		if ck, err := c.Cookie(middleware.RefreshCookie); err == nil {
			token = ck.Value
		}
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

// TelegramLogin signs in with a Telegram login widget payload.
//
// @Summary      Sign in with Telegram
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      telegramAuthRequest  true  "Telegram widget payload"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/telegram-login [post]
func (h *AuthHandler) TelegramLogin(c echo.Context) error {
	var req telegramAuthRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.TelegramLogin(c.Request().Context(), toTelegramAuth(req))
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

// Profile returns the caller's account.
//
// @Summary      Get own profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Profile(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile merges the given fields into the caller's account.
//
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileUpdateRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Router       /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req profileUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	user, err := h.authService.UpdateProfile(c.Request().Context(), actor, toProfileUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetBan bans or unbans a user. The caller's role comes from the token, never the body.
//
// @Summary      Ban or unban a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      banRequest  true  "Ban state"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/users/ban [put]
func (h *AuthHandler) SetBan(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req banRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	user, err := h.authService.SetBan(c.Request().Context(), actor, ports.BanInput{
		UserID: req.ID,
		Banned: req.IsBanned,
		Reason: req.BanReason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers returns a filtered page of users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "Search in email and names"
// @Param        role    query     string  false  "Role filter"
// @Param        banned  query     bool    false  "Ban state filter"
// @Param        offset  query     int     false  "Offset"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  userListResponse
// @Failure      403     {object}  errorResponse
// @Router       /auth/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var f ports.UserFilter
	var role string
	b := echo.QueryParamsBinder(c).
		String("q", &f.Query).
		String("role", &role).
		Int("offset", &f.Offset).
		Int("limit", &f.Limit)
	if c.QueryParam("banned") != "" {
		var banned bool
		b.Bool("banned", &banned)
		f.Banned = &banned
	}
	if err := b.BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	f.Role = domain.Role(role)
	if f.Role != "" && !f.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	page, err := h.authService.ListUsers(c.Request().Context(), actor, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{Items: page.Items, Total: page.Total})
}

// MyWorkspaces returns the workspaces the caller owns or manages.
//
// @Summary      List own workspaces
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Workspace
// @Router       /auth/my-workspace [get]
func (h *AuthHandler) MyWorkspaces(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.authService.MyWorkspaces(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// LinkTelegram attaches a verified Telegram account to the caller.
//
// @Summary      Link Telegram account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      telegramAuthRequest  true  "Telegram widget payload"
// @Success      200   {object}  domain.User
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/link-telegram [post]
func (h *AuthHandler) LinkTelegram(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req telegramAuthRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	user, err := h.authService.LinkTelegram(c.Request().Context(), actor, toTelegramAuth(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UnlinkTelegram detaches the caller's Telegram account.
//
// @Summary      Unlink Telegram account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /auth/unlink-telegram [post]
func (h *AuthHandler) UnlinkTelegram(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.authService.UnlinkTelegram(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
