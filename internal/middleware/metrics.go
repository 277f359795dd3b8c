package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks/pkg/metrics"
)

// Metrics observes per-route request latency. The metrics endpoint itself
// is excluded so scrapes do not inflate the histogram.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// FullPath keeps the route template (e.g. /api/companies/:id) so
		// cardinality stays bounded; raw paths only appear for 404s.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
