package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grc-api/internal/service"
)

// Metrics records request counts and latency per route. The route template
// (not the raw path) is used as the label to keep cardinality bounded.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
