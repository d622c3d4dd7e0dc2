// Package metrics defines and registers all custom Prometheus metrics for
// the provisioning client core. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "provisioning"

// CacheLookupsTotal counts read-model cache lookups.
// Label:
//   - result: "hit" (fresh snapshot served), "miss" (no snapshot), or
//     "stale" (snapshot present but invalidated, refetch triggered)
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of read-model cache lookups, by result.",
	},
	[]string{"result"},
)

// CacheInvalidationsTotal counts cache entries marked stale.
var CacheInvalidationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of read-model cache entries marked stale.",
	},
)

// MutationsTotal counts mutations submitted through the serializer.
// Labels:
//   - entity_kind: "settlement", "inventory", "task", "player"
//   - outcome: "success" or "failure"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of mutations submitted, by entity kind and outcome.",
	},
	[]string{"entity_kind", "outcome"},
)

// MutationConflictsTotal counts submissions refused because a mutation for
// the same entity was still in flight.
var MutationConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutation_conflicts_total",
		Help:      "Total number of mutations rejected with a conflict-in-progress signal.",
	},
)

// BackendRequestDuration measures REST boundary round-trip time.
// Labels:
//   - method: HTTP method
//   - route: logical route name (e.g. "tasks", "inventory")
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend REST requests from send to decode.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// SessionExpiriesTotal counts forced logouts caused by a 401 response.
var SessionExpiriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expiries_total",
		Help:      "Total number of sessions discarded after an unauthorized response.",
	},
)
