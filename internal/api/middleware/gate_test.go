package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/core/domain"
)

type stubSession struct{ st domain.SessionState }

func (s stubSession) State() domain.SessionState { return s.st }

func signedIn(role domain.Role) stubSession {
	return stubSession{st: domain.AuthenticatedState("tok", domain.UserRecord{ID: "1", Email: "a@example.com", Role: role})}
}

func run(t *testing.T, mw echo.MiddlewareFunc, method, path string) (*httptest.ResponseRecorder, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		if _, ok := SessionFrom(c); !ok {
			t.Fatalf("session snapshot not stored on context")
		}
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, err, called
}

func TestGate_Allows(t *testing.T) {
	rec, err, called := run(t, Gate(signedIn(domain.RoleAdmin)), http.MethodGet, "/content/create")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGate_RedirectsSignedOutToLogin(t *testing.T) {
	rec, err, called := run(t, Gate(stubSession{st: domain.UnauthenticatedState()}), http.MethodGet, "/dashboard")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected 302 to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestGate_RedirectsWrongRoleToDashboard(t *testing.T) {
	rec, _, called := run(t, Gate(signedIn(domain.RoleAdmin)), http.MethodGet, "/content/edit/7")
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("expected 302 to /dashboard, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestGate_WritesFailWithDomainError(t *testing.T) {
	_, err, called := run(t, Gate(signedIn(domain.RoleUser)), http.MethodPut, "/content/edit/7")
	if called {
		t.Fatalf("should not reach next handler")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err, _ = run(t, Gate(stubSession{st: domain.UnauthenticatedState()}), http.MethodDelete, "/content/7")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestGate_UnlistedPathNeedsSessionOnly(t *testing.T) {
	_, err, called := run(t, Gate(signedIn(domain.RoleUser)), http.MethodPost, "/content/7/publish")
	if err != nil || !called {
		t.Fatalf("expected pass-through, got err=%v called=%v", err, called)
	}
}

func TestGate_RoleNoneIsAuthenticatedButUnprivileged(t *testing.T) {
	_, _, called := run(t, Gate(signedIn(domain.RoleNone)), http.MethodGet, "/content")
	if !called {
		t.Fatalf("RoleNone should still view content")
	}
	rec, _, called := run(t, Gate(signedIn(domain.RoleNone)), http.MethodGet, "/content/create")
	if called || rec.Code != http.StatusFound {
		t.Fatalf("RoleNone should be redirected from create, got %d", rec.Code)
	}
}

func TestGuestOnly(t *testing.T) {
	rec, _, called := run(t, GuestOnly(signedIn(domain.RoleUser)), http.MethodGet, "/login")
	if called || rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %d", rec.Code)
	}

	_, _, called = run(t, GuestOnly(stubSession{st: domain.UnauthenticatedState()}), http.MethodGet, "/login")
	if !called {
		t.Fatalf("guest should reach the login page")
	}
}
