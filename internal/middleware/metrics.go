package middleware

import (
	"referral_network/internal/metrics" // Prometheus collectors
	"strconv"                           // Status code formatting
	"time"                              // Request timing

	"github.com/gin-gonic/gin" // Gin web framework
)

// MetricsMiddleware records request counts and latencies per route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()  // Start timer
		c.Next()             // Run the handler chain
		path := c.FullPath() // Route template keeps label cardinality bounded
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HttpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.ResponseTimeHistogram.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
