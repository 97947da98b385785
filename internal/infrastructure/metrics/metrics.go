// Package metrics holds the Prometheus collectors owned by the
// infrastructure adapters: the session broadcaster and the remote client.
// Collectors are registered with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every dashboard metric name.
const Namespace = "dashboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts published session states.
// Label:
//   - status: "uninitialized", "loading", "authenticated" or "unauthenticated"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session states published, by status.",
	},
	[]string{"status"},
)

// SessionSubscribers tracks the number of live session-state subscriptions.
var SessionSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "session_subscribers",
		Help:      "Current number of session state subscribers.",
	},
)

// SessionSnapshotsDroppedTotal counts stale snapshots discarded for slow
// subscribers.
var SessionSnapshotsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "session_snapshots_dropped_total",
		Help:      "Total number of stale session snapshots dropped for slow subscribers.",
	},
)

// ── Remote service metrics ────────────────────────────────────────────────────

// RemoteRequestsTotal counts calls to the remote service.
// Labels:
//   - endpoint: logical call name (e.g. "auth_login", "contents_list")
//   - outcome: "ok", "unreachable", "malformed", or the HTTP status code
var RemoteRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "remote_requests_total",
		Help:      "Total number of remote service calls, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// RemoteRequestDuration measures remote call latency.
// Label:
//   - endpoint: logical call name
var RemoteRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of remote service calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)
