package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// APIMetrics is implemented by observability.Metrics.
type APIMetrics interface {
	APIInflightInc()
	APIInflightDec()
	ObserveAPI(method, route, status string, seconds float64)
}

// Metrics instruments HTTP request counts and latency.
func Metrics(m APIMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
