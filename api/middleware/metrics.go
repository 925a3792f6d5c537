package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records one finished request.
type RequestObserver interface {
	ObserveRequest(handler, method string, status int, latencyMS float64)
}

// MetricsMiddleware labels requests by route template, never by raw path,
// so order tokens do not explode label cardinality.
func MetricsMiddleware(obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveRequest(route, c.Request.Method, c.Writer.Status(), float64(time.Since(start).Microseconds())/1000)
	}
}
