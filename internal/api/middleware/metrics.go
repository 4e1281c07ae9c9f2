package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/admVeloHub/front-console-sub000/internal/metrics"
)

// Metrics Prometheus 请求指标中间件
// 以路由模板（c.FullPath）作为标签，未匹配的路由记为 "unmatched"
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
