package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/metrics"
)

// PrometheusMiddleware Prometheus监控中间件.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveConnections.Inc()

		c.Next()

		metrics.ActiveConnections.Dec()

		// 用路由模板做标签，避免 /files/:id 的每个 id 都成为新序列
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RequestCounter.WithLabelValues(method, path).Inc()

		duration := time.Since(start).Seconds()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
