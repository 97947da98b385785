package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubSession struct{}

func (stubSession) State() domain.SessionState { return domain.UnauthenticatedState() }

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec, resp
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := NewHealthHandler(stubSession{}).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	h := NewHealthDependenciesHandler(map[string]ports.Pinger{"session_store": ok, "remote_api": ok})

	rec, resp := serve(t, h.Readiness)
	if rec.Code != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("expected ok, got %d %+v", rec.Code, resp)
	}
	if len(resp.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %+v", resp.Dependencies)
	}
}

func TestReadiness_OneDown(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]ports.Pinger{
		"session_store": pingFunc(func(context.Context) error { return nil }),
		"remote_api":    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	rec, resp := serve(t, h.Readiness)
	if rec.Code != http.StatusServiceUnavailable || resp.Status != "degraded" {
		t.Fatalf("expected degraded, got %d %+v", rec.Code, resp)
	}
	if resp.Dependencies["remote_api"].Error != "connection refused" {
		t.Fatalf("unexpected remote status: %+v", resp.Dependencies["remote_api"])
	}
	if resp.Dependencies["session_store"].Status != "ok" {
		t.Fatalf("store should stay ok: %+v", resp.Dependencies["session_store"])
	}
}

func TestReadiness_ChecksShareDeadline(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]ports.Pinger{
		"slow": pingFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	})
	h.timeout = 10 * time.Millisecond

	rec, resp := serve(t, h.Readiness)
	if rec.Code != http.StatusServiceUnavailable || resp.Dependencies["slow"].Status != "unhealthy" {
		t.Fatalf("expected slow check to time out, got %d %+v", rec.Code, resp)
	}
}
