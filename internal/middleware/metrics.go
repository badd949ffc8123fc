// Package middleware provides the Gin HTTP middleware for the portfolio
// backend. Everything here is registered in internal/api/router.go before any
// route handlers so every request is covered regardless of handler.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/telemetry"
)

// MetricsMiddleware records request count and latency for every request.
//
// The path label comes from c.FullPath(), the matched route template
// (e.g. /api/blog/:slug/view) rather than the raw URL, so per-slug requests
// do not explode label cardinality. Requests that match no route use the
// literal "<no-route>".
//
// Register after gin.Recovery() and RequestIDMiddleware so the status set by
// error handlers is captured.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
