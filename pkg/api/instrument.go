package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/telekom/gt-mail-gateway/pkg/metrics"
)

// InstrumentedHandler wraps a gin handler to record request count, latency and
// error status codes under the given endpoint label.
func InstrumentedHandler(endpoint string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.APIEndpointRequests.WithLabelValues(endpoint).Inc()
		handler(c)
		metrics.APIEndpointDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		status := c.Writer.Status()
		if status >= 400 {
			metrics.APIEndpointErrors.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
		}
	}
}
