package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/spacehub/coworking-api/internal/api/handler"
	"github.com/spacehub/coworking-api/internal/api/middleware"
	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// maxBody bounds every request body; JSON payloads here are small.
const maxBody = "1M"

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth       ports.AuthService
	Workspaces ports.WorkspaceService
	Zones      ports.ZoneService
	Places     ports.PlaceService
	Bookings   ports.BookingService

	Tokens middleware.TokenVerifier
	// Checks are probed by GET /health/ready.
	Checks map[string]handler.CheckFunc
	Cookie handler.CookieOptions
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.BodyLimit(maxBody))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("coworking"))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	workspaceHandler := handler.NewWorkspaceHandler(deps.Workspaces)
	zoneHandler := handler.NewZoneHandler(deps.Zones)
	placeHandler := handler.NewPlaceHandler(deps.Places)
	bookingHandler := handler.NewBookingHandler(deps.Bookings)

	refresh := middleware.RefreshSession(deps.Auth, middleware.RefreshOptions{
		MaxAge:  deps.Cookie.MaxAge,
		MaxBody: middleware.DefaultMaxReplayBody,
		Secure:  deps.Cookie.Secure,
		Log:     deps.Log,
	})
	auth := middleware.Auth(deps.Tokens)
	admins := middleware.RBAC(domain.RoleAdmin, domain.RoleSuperAdmin)

	// --- Auth routes ---
	public := e.Group("/auth")
	public.POST("/sign-in", authHandler.SignIn)
	public.POST("/sign-up", authHandler.SignUp, refresh, middleware.OptionalAuth(deps.Tokens))
	public.POST("/refresh", authHandler.Refresh)
	public.POST("/telegram-login", authHandler.TelegramLogin)

	account := e.Group("/auth", refresh, auth)
	account.GET("/profile", authHandler.Profile)
	account.PUT("/profile", authHandler.UpdateProfile)
	account.GET("/my-workspace", authHandler.MyWorkspaces)
	account.POST("/link-telegram", authHandler.LinkTelegram)
	account.POST("/unlink-telegram", authHandler.UnlinkTelegram)
	account.GET("/users", authHandler.ListUsers, admins)
	account.PUT("/users/ban", authHandler.SetBan, admins)

	// --- Workspaces ---
	workspaces := e.Group("/workspaces", refresh, auth)
	workspaces.POST("", workspaceHandler.Create, admins)
	workspaces.GET("", workspaceHandler.List)
	workspaces.GET("/:id", workspaceHandler.Get)
	workspaces.PATCH("/:id", workspaceHandler.Update)
	workspaces.DELETE("/:id", workspaceHandler.Remove)
	workspaces.PATCH("/:id/approve", workspaceHandler.Approve)
	workspaces.POST("/:id/managers", workspaceHandler.AddManager)
	workspaces.GET("/:id/managers", workspaceHandler.ListManagers)
	workspaces.DELETE("/:id/managers/:managerId", workspaceHandler.RemoveManager)

	// --- Zones ---
	zones := e.Group("/zones", refresh, auth)
	zones.POST("", zoneHandler.Create)
	zones.GET("", zoneHandler.List)
	zones.GET("/:id", zoneHandler.Get)
	zones.PATCH("/:id", zoneHandler.Update)
	zones.DELETE("/:id", zoneHandler.Remove)

	// --- Places ---
	places := e.Group("/places", refresh, auth)
	places.POST("", placeHandler.Create)
	places.GET("", placeHandler.List)
	places.GET("/:id", placeHandler.Get)
	places.PATCH("/:id", placeHandler.Update)
	places.DELETE("/:id", placeHandler.Remove)
	places.POST("/booking", bookingHandler.CreateOnBehalf)
	places.POST("/bookings", bookingHandler.ListForPlaces)
	places.GET("/:id/bookings", bookingHandler.PlaceBookings)

	// --- Bookings ---
	bookings := e.Group("/bookings", refresh, auth)
	bookings.POST("", bookingHandler.Create)
	bookings.GET("", bookingHandler.ListMine)
	bookings.GET("/:id", bookingHandler.Get)
	bookings.PATCH("/:id", bookingHandler.Reschedule)
	bookings.DELETE("/:id", bookingHandler.Cancel)
	bookings.GET("/:id/history", bookingHandler.History)
	bookings.PATCH("/:id/accept", bookingHandler.Accept)
	bookings.PATCH("/:id/reject", bookingHandler.Reject)

	return e
}

// requestLogger emits one structured line per request. HandleError runs the
// error handler first so the logged status is the one the client received.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
