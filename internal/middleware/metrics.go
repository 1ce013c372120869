package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoNotify/notigate/internal/pkg/metrics"
)

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		// 按路由模板聚合, /api/v1/logs/:id 不会按具体 id 撑爆基数
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		metrics.LatencyBucket.WithLabelValues(endpoint).Observe(duration)
	}
}
