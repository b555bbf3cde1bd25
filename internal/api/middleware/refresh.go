package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/api/metrics"
	"github.com/spacehub/coworking-api/internal/core/domain"
)

const (
	// RefreshCookie is the cookie carrying the refresh token.
	RefreshCookie = "refreshToken"
	// DefaultRefreshCookieMaxAge matches the refresh token lifetime.
	DefaultRefreshCookieMaxAge = 30 * 24 * time.Hour
	// DefaultMaxReplayBody caps the request body kept for a replay.
	DefaultMaxReplayBody int64 = 1 << 20
)

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// RefreshOptions configures RefreshSession.
type RefreshOptions struct {
	MaxAge time.Duration
	Secure bool
	// MaxBody bounds the buffered request body; larger bodies get 413.
	MaxBody int64
	Log     zerolog.Logger
}

// RefreshSession wraps a protected chain. When the chain fails with 401 and
// the request carries a refresh token, the session is refreshed, the new
// access token replaces this request's Authorization header and the chain is
// replayed exactly once. A failed refresh returns the original error; the
// replay's outcome, success or failure, is returned as-is.
func RefreshSession(refresher Refresher, opts RefreshOptions) echo.MiddlewareFunc {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultRefreshCookieMaxAge
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxReplayBody
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			token := refreshToken(req)
			if token == "" {
				return next(c)
			}

			// The body is consumed by the first attempt; keep a copy for the replay.
			var body []byte
			if req.Body != nil && req.Body != http.NoBody {
				var err error
				if body, err = io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, opts.MaxBody)); err != nil {
					var tooLarge *http.MaxBytesError
					if errors.As(err, &tooLarge) {
						return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
					}
					return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
				}
				_ = req.Body.Close()
				req.Body = io.NopCloser(bytes.NewReader(body))
			}

			err := next(c)
			if err == nil || !unauthorized(err) || c.Response().Committed {
				return err
			}

			pair, rerr := refresher.Refresh(req.Context(), token)
			if rerr != nil {
				metrics.SessionRefreshTotal.WithLabelValues("failed").Inc()
				opts.Log.Debug().Err(rerr).Str("path", c.Path()).Msg("session refresh failed")
				return err
			}
			metrics.SessionRefreshTotal.WithLabelValues("refreshed").Inc()

			req.Header.Set(echo.HeaderAuthorization, "Bearer "+pair.AccessToken)
			if body != nil {
				req.Body = io.NopCloser(bytes.NewReader(body))
			}
			c.Set(PrincipalKey, nil)
			c.SetCookie(&http.Cookie{
				Name:     RefreshCookie,
				Value:    pair.RefreshToken,
				Path:     "/",
				MaxAge:   int(opts.MaxAge / time.Second),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Response().Header().Set(HeaderAccessToken, pair.AccessToken)
			return next(c)
		}
	}
}

// HeaderAccessToken exposes a refreshed access token to the client.
const HeaderAccessToken = "X-Access-Token"

// refreshToken reads the refresh cookie, falling back to parsing the raw
// Cookie header when the standard parser rejects it.
func refreshToken(r *http.Request) string {
	if ck, err := r.Cookie(RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	for _, part := range strings.Split(r.Header.Get("Cookie"), ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == RefreshCookie {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func unauthorized(err error) bool {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code == http.StatusUnauthorized
	}
	return errors.Is(err, domain.ErrUnauthenticated)
}
