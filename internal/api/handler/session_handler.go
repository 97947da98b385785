package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
	"github.com/inkwell/dashboard/internal/core/service"
)

type SessionHandler struct {
	session ports.SessionController
}

func NewSessionHandler(session ports.SessionController) *SessionHandler {
	return &SessionHandler{session: session}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type sessionResponse struct {
	Session    domain.SessionState `json:"session"`
	Navigation []service.NavItem   `json:"navigation"`
	Redirect   string              `json:"redirect,omitempty"`
}

type roleResponse struct {
	User    *domain.UserRecord  `json:"user"`
	Session domain.SessionState `json:"session"`
}

func newSessionResponse(st domain.SessionState, redirect string) sessionResponse {
	return sessionResponse{Session: st, Navigation: service.Navigation(st), Redirect: redirect}
}

// State returns the current session snapshot.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(h.session.State(), ""))
}

// Form serves the login or register page for signed-out sessions.
//
// @Summary      Login / register page
// @Tags         session
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Success      302
// @Router       /login [get]
// @Router       /register [get]
func (h *SessionHandler) Form(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(ctxSession(c, h.session), ""))
}

// Login authenticates against the remote service and opens the session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	st, err := h.session.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(st, service.DefaultPath))
}

// Register creates a remote account and opens the session.
//
// @Summary      Register a new user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  sessionResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	st, err := h.session.Register(c.Request().Context(), domain.Registration{
		DisplayName:     req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newSessionResponse(st, service.DefaultPath))
}

// Logout always ends the local session, even if the remote call fails.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Router       /logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	st := h.session.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, newSessionResponse(st, service.LoginPath))
}

// RefreshRole re-reads the user's role from the role service.
//
// @Summary      Refresh user role
// @Tags         session
// @Produce      json
// @Success      200   {object}  roleResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /session/role [post]
func (h *SessionHandler) RefreshRole(c echo.Context) error {
	user, err := h.session.RefreshUserRole(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{User: user, Session: h.session.State()})
}

// RefreshCredential renews the bearer token.
//
// @Summary      Refresh credential
// @Tags         session
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /session/refresh [post]
func (h *SessionHandler) RefreshCredential(c echo.Context) error {
	st, err := h.session.RefreshCredential(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(st, ""))
}
