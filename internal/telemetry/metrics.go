// Package telemetry provides structured logging setup and Prometheus metrics
// for the portfolio backend.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP listener started by cmd/server (default port
// 9090, path /metrics). The metrics listener is separate from the Gin router
// so the scrape path never passes through rate limiting or session middleware.
//
// HTTP metrics use c.FullPath() (route template such as /api/papers/:id)
// rather than the raw request URL to keep label cardinality bounded.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/devfolio/portfolio-backend/internal/safego"
)

// HTTP metrics — labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// Rate limiting metrics.
//
// RateLimitRejectionsTotal is a CounterVec with label {limiter} distinguishing
// the in-memory login limiter ("login") from the persisted contact limiter
// ("contact"). A sustained non-zero rate on the login limiter is the primary
// brute-force signal for this service.
var RateLimitRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Total number of requests rejected by a rate limiter, by limiter name.",
	},
	[]string{"limiter"},
)

// CSRFRejectionsTotal counts state-changing requests rejected by the
// origin/referer validator.
var CSRFRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "csrf_rejections_total",
		Help: "Total number of requests rejected by the cross-origin validator.",
	},
)

// BlogViewsTotal counts successful view-count increments by slug. Slugs are
// sanitized and verified against the content index before this counter is
// touched, so cardinality is bounded by the number of published posts.
var BlogViewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_views_total",
		Help: "Total number of recorded blog post views, by slug.",
	},
	[]string{"slug"},
)

// ContactSubmissionsTotal counts contact-form submissions by outcome
// ("sent", "rate_limited", "invalid", "failed").
var ContactSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "contact_submissions_total",
		Help: "Total number of contact form submissions, by outcome.",
	},
	[]string{"outcome"},
)

// DBOpenConnections tracks the number of open connections currently held by
// the sql.DB pool. It is sampled every 30 seconds by StartDBStatsCollector
// rather than per-request to avoid calling sql.DB.Stats() on the hot path.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates DBOpenConnections.
// The goroutine exits when the database becomes unreachable, which happens
// naturally at shutdown once db.Close() runs.
func StartDBStatsCollector(db *sql.DB) {
	safego.Go(func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	})
}
