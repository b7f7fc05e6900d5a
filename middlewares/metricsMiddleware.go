package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jadygoy/cafe_backend/metrics"
)

// MetricsMiddleware records every request under its route template
// (e.g. /api/reports/:date) so dates do not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
