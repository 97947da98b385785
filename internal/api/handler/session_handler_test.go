package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/core/domain"
)

type stubSessionController struct {
	state      domain.SessionState
	loginFn    func(ctx context.Context, email, password string) (domain.SessionState, error)
	registerFn func(ctx context.Context, reg domain.Registration) (domain.SessionState, error)
	roleFn     func(ctx context.Context) (*domain.UserRecord, error)
	loggedOut  bool
}

func (s *stubSessionController) State() domain.SessionState { return s.state }

func (s *stubSessionController) Initialize(context.Context) domain.SessionState { return s.state }

func (s *stubSessionController) Login(ctx context.Context, email, password string) (domain.SessionState, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessionController) Register(ctx context.Context, reg domain.Registration) (domain.SessionState, error) {
	return s.registerFn(ctx, reg)
}

func (s *stubSessionController) Logout(context.Context) domain.SessionState {
	s.loggedOut = true
	s.state = domain.UnauthenticatedState()
	return s.state
}

func (s *stubSessionController) RefreshUserRole(ctx context.Context) (*domain.UserRecord, error) {
	return s.roleFn(ctx)
}

func (s *stubSessionController) RefreshCredential(context.Context) (domain.SessionState, error) {
	return s.state, nil
}

func (s *stubSessionController) Subscribe(int) (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState)
	return ch, func() {}
}

func adminState() domain.SessionState {
	return domain.AuthenticatedState("tok", domain.UserRecord{ID: "2", DisplayName: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin})
}

func postJSON(path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestSessionHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubSessionController{
		loginFn: func(ctx context.Context, email, password string) (domain.SessionState, error) {
			if email != "admin@example.com" || password != "password" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return adminState(), nil
		},
	}
	h := NewSessionHandler(stub)

	req, rec := postJSON("/login", `{"email":"admin@example.com","password":"password"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["redirect"] != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %v", resp["redirect"])
	}
	session := resp["session"].(map[string]any)
	if _, leaked := session["credential"]; leaked {
		t.Fatalf("credential must not be serialized")
	}
	user := session["user"].(map[string]any)
	if user["role"] != "Admin" || user["email"] != "admin@example.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if nav := resp["navigation"].([]any); len(nav) != 3 {
		t.Fatalf("expected 3 nav items for Admin, got %d", len(nav))
	}
}

func TestSessionHandler_Login_ErrorPassesThrough(t *testing.T) {
	e := echo.New()
	stub := &stubSessionController{
		loginFn: func(context.Context, string, string) (domain.SessionState, error) {
			return domain.UnauthenticatedState(), domain.ErrInvalidCredentials
		},
	}
	h := NewSessionHandler(stub)

	req, rec := postJSON("/login", `{"email":"a@example.com","password":"nope123"}`)
	if err := h.Login(e.NewContext(req, rec)); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionHandler_Login_BadPayload(t *testing.T) {
	e := echo.New()
	h := NewSessionHandler(&stubSessionController{})

	req, rec := postJSON("/login", `{"email":`)
	err := h.Login(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestSessionHandler_Register_MapsFields(t *testing.T) {
	e := echo.New()
	stub := &stubSessionController{
		registerFn: func(ctx context.Context, reg domain.Registration) (domain.SessionState, error) {
			if reg.DisplayName != "Alice" || reg.Email != "alice@example.com" || reg.Password != "secret1" || reg.ConfirmPassword != "secret1" {
				t.Fatalf("unexpected registration: %+v", reg)
			}
			return domain.AuthenticatedState("tok", domain.UserRecord{ID: "9", Email: reg.Email, Role: domain.RoleUser}), nil
		},
	}
	h := NewSessionHandler(stub)

	req, rec := postJSON("/register", `{"name":"Alice","email":"alice@example.com","password":"secret1","confirmPassword":"secret1"}`)
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestSessionHandler_Logout(t *testing.T) {
	e := echo.New()
	stub := &stubSessionController{state: adminState()}
	h := NewSessionHandler(stub)

	req, rec := postJSON("/logout", "")
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !stub.loggedOut {
		t.Fatalf("controller Logout not called")
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/login"`) {
		t.Fatalf("expected redirect to /login, got %s", rec.Body.String())
	}
}

func TestSessionHandler_RefreshRole_SignedOut(t *testing.T) {
	e := echo.New()
	stub := &stubSessionController{
		state:  domain.UnauthenticatedState(),
		roleFn: func(context.Context) (*domain.UserRecord, error) { return nil, nil },
	}
	h := NewSessionHandler(stub)

	req, rec := postJSON("/session/role", "")
	if err := h.RefreshRole(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"user":null`) {
		t.Fatalf("expected null user, got %s", rec.Body.String())
	}
}
