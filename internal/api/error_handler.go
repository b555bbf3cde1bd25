package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// kindStatus maps domain error kinds to HTTP status codes.
var kindStatus = map[error]int{
	domain.ErrNotFound:         http.StatusNotFound,
	domain.ErrAlreadyExists:    http.StatusConflict,
	domain.ErrConflict:         http.StatusConflict,
	domain.ErrUnauthenticated:  http.StatusUnauthorized,
	domain.ErrPermissionDenied: http.StatusForbidden,
	domain.ErrInvalidArgument:  http.StatusBadRequest,
	domain.ErrInvalidState:     http.StatusConflict,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if code, ok := kindStatus[domain.KindOf(err)]; ok {
		var de *domain.Error
		if errors.As(err, &de) {
			return code, de.Message
		}
		return code, domain.KindOf(err).Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
