package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// stubVerifier accepts the tokens it knows about.
type stubVerifier map[string]domain.Claims

func (v stubVerifier) Verify(token string) (domain.Claims, error) {
	c, ok := v[token]
	if !ok {
		return domain.Claims{}, errors.New("unknown token")
	}
	return c, nil
}

var alice = domain.Claims{UserID: 7, Email: "alice@example.com", Role: domain.RoleAdmin}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(stubVerifier{"good": alice})
	handler := mw(func(c echo.Context) error {
		called = true
		p, ok := PrincipalFrom(c)
		if !ok {
			t.Fatalf("principal not set")
		}
		if p.UserID != 7 || p.Email != "alice@example.com" || p.Role != domain.RoleAdmin {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic good",
		"empty token":    "Bearer ",
		"unknown token":  "Bearer forged",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			mw := Auth(stubVerifier{"good": alice})
			handler := mw(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(stubVerifier{"good": alice})(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestOptionalAuth(t *testing.T) {
	verifier := stubVerifier{"good": alice}

	t.Run("anonymous", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		handler := OptionalAuth(verifier)(func(c echo.Context) error {
			if _, ok := PrincipalFrom(c); ok {
				t.Fatalf("anonymous request must not carry a principal")
			}
			return nil
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		c := e.NewContext(req, httptest.NewRecorder())

		handler := OptionalAuth(verifier)(func(c echo.Context) error {
			if p, ok := PrincipalFrom(c); !ok || p.UserID != alice.UserID {
				t.Fatalf("principal not set")
			}
			return nil
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	})

	t.Run("invalid token is not downgraded to anonymous", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer forged")
		c := e.NewContext(req, httptest.NewRecorder())

		handler := OptionalAuth(verifier)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})
		var he *echo.HTTPError
		if err := handler(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})
}
