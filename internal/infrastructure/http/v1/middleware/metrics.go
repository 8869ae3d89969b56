package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"metalstock/internal/infrastructure/metrics"
)

// Metrics middleware counts requests and observes latency per route.
// Unmatched paths share one label to keep cardinality bounded.
func Metrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := routeOf(c)
		method := c.Request.Method
		reg.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		reg.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
