package devapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/core/domain"
)

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	token, _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(svc)(func(c echo.Context) error {
		called = true
		claims, err := claimsFrom(c)
		if err != nil {
			t.Fatalf("claims not set: %v", err)
		}
		if claims.Email != "alice@example.com" {
			t.Fatalf("unexpected email claim %q", claims.Email)
		}
		if c.Get(ctxRole) != domain.RoleUser {
			t.Fatalf("role not set")
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

func TestAuthMiddleware_Rejections(t *testing.T) {
	svc, _ := newTestAuthService(t)
	expired := NewAuthService(NewMemoryStore(), "secret", time.Nanosecond)
	stale, _, err := expired.Register(context.Background(), "Old", "old@example.com", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	time.Sleep(time.Millisecond)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage token":  "Bearer not-a-jwt",
		"expired token":  "Bearer " + stale,
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

			handler := Auth(svc)(func(c echo.Context) error {
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

func TestRequirePermission(t *testing.T) {
	cases := []struct {
		role domain.Role
		perm domain.Permission
		want int
	}{
		{domain.RoleUser, domain.PermViewContent, http.StatusOK},
		{domain.RoleNone, domain.PermViewContent, http.StatusOK},
		{domain.RoleUser, domain.PermCreateContent, http.StatusForbidden},
		{domain.RoleAdmin, domain.PermCreateContent, http.StatusOK},
		{domain.RoleAdmin, domain.PermDeleteContent, http.StatusForbidden},
		{domain.RoleSuperAdmin, domain.PermDeleteContent, http.StatusOK},
	}
	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set(ctxRole, tc.role)

		handler := RequirePermission(tc.perm)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != tc.want {
			t.Fatalf("%s/%s: expected %d, got %d", tc.role, tc.perm, tc.want, rec.Code)
		}
	}
}

func TestRequirePermission_WithoutAuth(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := RequirePermission(domain.PermViewContent)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
