package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/inkwell/dashboard/docs"
	"github.com/inkwell/dashboard/internal/api/handler"
	"github.com/inkwell/dashboard/internal/api/metrics"
	"github.com/inkwell/dashboard/internal/api/middleware"
	"github.com/inkwell/dashboard/internal/core/ports"
	"github.com/inkwell/dashboard/internal/core/service"
	"github.com/inkwell/dashboard/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the dashboard surface is built from.
type Deps struct {
	Session ports.SessionController
	Content ports.ContentService
	// Checks are pinged by the readiness endpoint, keyed by dependency name.
	Checks map[string]ports.Pinger
	// LoginRateLimit is requests per minute per IP on login and register.
	// Zero disables limiting.
	LoginRateLimit int
	Logger         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(metrics.HTTPMiddleware())

	// --- Dependencies ---
	sessionHandler := handler.NewSessionHandler(d.Session)
	contentHandler := handler.NewContentHandler(d.Content, d.Session)
	dashboardHandler := handler.NewDashboardHandler(d.Content, d.Session)
	gate := middleware.Gate(d.Session)
	guestOnly := middleware.GuestOnly(d.Session)

	// --- Session routes ---
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, service.DefaultPath)
	})
	e.GET("/session", sessionHandler.State)
	e.GET(service.LoginPath, sessionHandler.Form, guestOnly)
	e.GET(service.RegisterPath, sessionHandler.Form, guestOnly)

	credentials := []echo.MiddlewareFunc{guestOnly}
	if d.LoginRateLimit > 0 {
		credentials = append(credentials, loginLimiter(d.LoginRateLimit))
	}
	e.POST(service.LoginPath, sessionHandler.Login, credentials...)
	e.POST(service.RegisterPath, sessionHandler.Register, credentials...)

	e.POST("/logout", sessionHandler.Logout)
	e.POST("/session/role", sessionHandler.RefreshRole, gate)
	e.POST("/session/refresh", sessionHandler.RefreshCredential, gate)

	// --- Dashboard and content routes (route gate) ---
	e.GET(service.DefaultPath, dashboardHandler.Show, gate)
	e.GET("/content", contentHandler.List, gate)
	e.GET("/content/create", contentHandler.NewForm, gate)
	e.POST("/content/create", contentHandler.Create, gate)
	e.GET("/content/edit/:id", contentHandler.EditForm, gate)
	e.PUT("/content/edit/:id", contentHandler.Update, gate)
	e.GET("/content/:id", contentHandler.Get, gate)
	e.POST("/content/:id/publish", contentHandler.TogglePublish, gate)
	e.DELETE("/content/:id", contentHandler.Delete, gate)

	// --- Health checks and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler(d.Session)
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// loginLimiter rejects credential submissions beyond limit per minute per IP.
func loginLimiter(limit int) echo.MiddlewareFunc {
	return echo.WrapMiddleware(httprate.Limit(
		limit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RateLimitedTotal.WithLabelValues(r.URL.Path).Inc()
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many attempts, try again later"}` + "\n"))
		}),
	))
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
