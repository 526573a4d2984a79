// Package metrics defines the custom Prometheus metrics of the pharmacy API.
// Request counts and latencies come from echoprometheus; this package only
// holds business metrics. Everything registers with the default registry on
// import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pharmacy"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts auth operations by outcome.
// Labels:
//   - operation: "register", "login" or "refresh"
//   - result: "success", "rejected" (client error) or "error" (server error)
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// RateLimitedTotal counts requests rejected by a rate limiter.
// Label:
//   - scope: "global" or "auth"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
	[]string{"scope"},
)

// ── Product metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts successful product writes.
// Label:
//   - operation: "create", "update" or "delete"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of products created, updated or deleted.",
	},
	[]string{"operation"},
)

// ProductsByExpiryStatus is refreshed periodically from the dashboard service.
// Label:
//   - status: "expired", "expiring_soon" or "valid"
var ProductsByExpiryStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "products_by_expiry_status",
		Help:      "Current number of products in each expiry bucket.",
	},
	[]string{"status"},
)

// ExpiryRefreshErrorsTotal counts failed refreshes of ProductsByExpiryStatus.
var ExpiryRefreshErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expiry_refresh_errors_total",
		Help:      "Total number of failed expiry gauge refreshes.",
	},
)
