// Package metrics defines the Prometheus collectors for the dashboard's HTTP
// surface. Adapter-level collectors live in infrastructure/metrics; both
// register with the default registry, which /metrics exposes.
package metrics

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	inframetrics "github.com/inkwell/dashboard/internal/infrastructure/metrics"
)

const namespace = inframetrics.Namespace

// ── Dashboard metrics ─────────────────────────────────────────────────────────

// RouteDecisionsTotal counts route gate outcomes.
// Labels:
//   - route: the matched route pattern (e.g. "/content/edit/:id")
//   - decision: "allow", "redirect_login" or "redirect_default"
var RouteDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_decisions_total",
		Help:      "Total number of route authorization decisions.",
	},
	[]string{"route", "decision"},
)

// ContentActionsTotal counts content writes issued through the dashboard.
// Labels:
//   - action: "create", "update", "toggle_publish" or "delete"
//   - result: "ok" or "error"
var ContentActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_actions_total",
		Help:      "Total number of content write actions, by action and result.",
	},
	[]string{"action", "result"},
)

// RateLimitedTotal counts requests rejected by the login/register limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by rate limiting, by path.",
	},
	[]string{"path"},
)

// Result returns the "result" label value for err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var httpMiddleware = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware(namespace)
})

// HTTPMiddleware records request counts, sizes and latencies for the
// dashboard's own routes. The collectors are registered once per process.
func HTTPMiddleware() echo.MiddlewareFunc {
	return httpMiddleware()
}
