package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/inkwell/dashboard/internal/core/ports"
)

// HealthHandler handles GET /health, the liveness check.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct {
	session ports.SessionReader
}

func NewHealthHandler(session ports.SessionReader) *HealthHandler {
	return &HealthHandler{session: session}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"session": string(h.session.State().Status),
	})
}

// HealthDependenciesHandler handles GET /health/ready, the readiness check.
// Pings the session store and the remote API before declaring the service
// ready. Checks run concurrently and share one deadline.
type HealthDependenciesHandler struct {
	checks  map[string]ports.Pinger
	timeout time.Duration
}

func NewHealthDependenciesHandler(checks map[string]ports.Pinger) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		checks:  checks,
		timeout: 3 * time.Second,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		deps    = make(map[string]dependencyStatus, len(names))
		healthy = true
	)

	// Failures are recorded per dependency rather than returned, so one
	// slow check does not cancel the others.
	var g errgroup.Group
	for _, name := range names {
		name := name
		g.Go(func() error {
			err := h.checks[name].Ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
				healthy = false
				return nil
			}
			deps[name] = dependencyStatus{Status: "ok"}
			return nil
		})
	}
	_ = g.Wait()

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
