package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

type stubRefresher struct {
	calls int
	got   string
	pair  *domain.TokenPair
	err   error
}

func (r *stubRefresher) Refresh(_ context.Context, token string) (*domain.TokenPair, error) {
	r.calls++
	r.got = token
	if r.err != nil {
		return nil, r.err
	}
	return r.pair, nil
}

func newRefreshRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer stale")
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "refresh-1"})
	return req
}

func protected(verifier TokenVerifier, refresher Refresher, next echo.HandlerFunc) echo.HandlerFunc {
	chain := Auth(verifier)(next)
	return RefreshSession(refresher, RefreshOptions{Log: zerolog.Nop()})(chain)
}

func TestRefreshSession_ReplaysOnceWithNewToken(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRefreshRequest(`{"placeId":1}`), rec)

	refresher := &stubRefresher{pair: &domain.TokenPair{AccessToken: "good", RefreshToken: "refresh-2"}}
	calls := 0
	handler := protected(stubVerifier{"good": alice}, refresher, func(c echo.Context) error {
		calls++
		p, ok := PrincipalFrom(c)
		if !ok || p.UserID != alice.UserID {
			t.Fatalf("principal not set on replay")
		}
		body, _ := io.ReadAll(c.Request().Body)
		if string(body) != `{"placeId":1}` {
			t.Fatalf("body not replayed, got %q", body)
		}
		return c.NoContent(http.StatusCreated)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if refresher.calls != 1 || refresher.got != "refresh-1" {
		t.Fatalf("unexpected refresh: calls=%d token=%q", refresher.calls, refresher.got)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get(HeaderAccessToken); got != "good" {
		t.Fatalf("expected new access token header, got %q", got)
	}

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == RefreshCookie {
			cookie = ck
		}
	}
	if cookie == nil || cookie.Value != "refresh-2" || !cookie.HttpOnly {
		t.Fatalf("rotated refresh cookie not set: %+v", cookie)
	}
}

func TestRefreshSession_BodyConsumedBeforeFailure(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRefreshRequest(`{"note":"x"}`), rec)

	refresher := &stubRefresher{pair: &domain.TokenPair{AccessToken: "good", RefreshToken: "refresh-2"}}
	var bodies []string
	handler := RefreshSession(refresher, RefreshOptions{Log: zerolog.Nop()})(func(c echo.Context) error {
		body, _ := io.ReadAll(c.Request().Body)
		bodies = append(bodies, string(body))
		if len(bodies) == 1 {
			return domain.Errorf(domain.ErrUnauthenticated, "token expired")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[1] != `{"note":"x"}` {
		t.Fatalf("unexpected bodies: %q", bodies)
	}
}

func TestRefreshSession_RejectsOversizedBody(t *testing.T) {
	e := echo.New()
	c := e.NewContext(newRefreshRequest(strings.Repeat("x", 64)), httptest.NewRecorder())

	called := false
	handler := RefreshSession(&stubRefresher{}, RefreshOptions{MaxBody: 16, Log: zerolog.Nop()})(func(c echo.Context) error {
		called = true
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
	if called {
		t.Fatal("handler must not run with a truncated body")
	}
}

func TestRefreshSession_FailedRefreshReturnsOriginalError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRefreshRequest(""), rec)

	refresher := &stubRefresher{err: domain.Errorf(domain.ErrUnauthenticated, "refresh token revoked")}
	handler := protected(stubVerifier{}, refresher, func(c echo.Context) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized || he.Message != "invalid token" {
		t.Fatalf("expected original 401, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie must be written on failed refresh")
	}
}

func TestRefreshSession_SecondFailureIsReturnedAsIs(t *testing.T) {
	e := echo.New()
	c := e.NewContext(newRefreshRequest(""), httptest.NewRecorder())

	// The refreshed token is not accepted either: no second refresh attempt.
	refresher := &stubRefresher{pair: &domain.TokenPair{AccessToken: "also-bad", RefreshToken: "refresh-2"}}
	handler := protected(stubVerifier{}, refresher, func(c echo.Context) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	var he *echo.HTTPError
	if err := handler(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("expected exactly one refresh, got %d", refresher.calls)
	}
}

func TestRefreshSession_PassThrough(t *testing.T) {
	t.Run("no refresh token", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		refresher := &stubRefresher{}
		handler := protected(stubVerifier{}, refresher, func(c echo.Context) error { return nil })

		var he *echo.HTTPError
		if err := handler(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
		if refresher.calls != 0 {
			t.Fatalf("refresh must not run without a refresh token")
		}
	})

	t.Run("non-401 errors", func(t *testing.T) {
		e := echo.New()
		c := e.NewContext(newRefreshRequest(""), httptest.NewRecorder())

		refresher := &stubRefresher{}
		handler := RefreshSession(refresher, RefreshOptions{Log: zerolog.Nop()})(func(c echo.Context) error {
			return domain.Errorf(domain.ErrPermissionDenied, "not yours")
		})

		if err := handler(c); !errors.Is(err, domain.ErrPermissionDenied) {
			t.Fatalf("expected permission error, got %v", err)
		}
		if refresher.calls != 0 {
			t.Fatalf("refresh must only run on 401")
		}
	})

	t.Run("success", func(t *testing.T) {
		e := echo.New()
		req := newRefreshRequest("")
		req.Header.Set("Authorization", "Bearer good")
		c := e.NewContext(req, httptest.NewRecorder())

		refresher := &stubRefresher{}
		handler := protected(stubVerifier{"good": alice}, refresher, func(c echo.Context) error { return nil })
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if refresher.calls != 0 {
			t.Fatalf("refresh must not run on success")
		}
	})
}

func TestRefreshToken_RawHeaderFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	// The backslash makes net/http drop the cookie.
	req.Header.Set("Cookie", `theme=dark; refreshToken=abc\def`)

	if got := refreshToken(req); got != `abc\def` {
		t.Fatalf("expected raw cookie value, got %q", got)
	}
}
