package devapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// NewRouter builds the Echo instance for the dev service.
func NewRouter(auth *AuthService, store *MemoryStore, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	h := NewHandler(auth, store, log)
	authed := Auth(auth)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Auth routes ---
	e.POST("/auth/login", h.Login)
	e.POST("/auth/register", h.Register)
	e.GET("/auth/verify", h.Verify, authed)
	e.POST("/auth/logout", h.Logout, authed)
	e.POST("/auth/refresh", h.Refresh, authed)

	// --- Users ---
	e.GET("/users/:id", h.GetUser, authed)

	// --- Contents ---
	contents := e.Group("/api/contents", authed)
	contents.GET("", h.ListContents, RequirePermission(domain.PermViewContent))
	contents.GET("/:id", h.GetContent, RequirePermission(domain.PermViewContent))
	contents.POST("", h.CreateContent, RequirePermission(domain.PermCreateContent))
	contents.PUT("/:id", h.UpdateContent)
	contents.DELETE("/:id", h.DeleteContent, RequirePermission(domain.PermDeleteContent))

	return e
}

// errorHandler renders {"error": "..."} for every failure.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := http.StatusInternalServerError, "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code, msg = he.Code, fmt.Sprintf("%v", he.Message)
		} else {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
