package middleware

import (
	"fmt"
	"time"

	aws_pkg "catalog-service/pkg/aws"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware counts requests per route and status class and records
// their latency. The recorder queues data points, so this never blocks on
// CloudWatch.
func MetricsMiddleware(recorder aws_pkg.Recorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil || !recorder.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		dims := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    route,
			"Status":  statusClass(status),
		}

		ctx := c.Request.Context()
		_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTPRequests, dims)
		_ = recorder.RecordLatency(ctx, aws_pkg.MetricHTTPLatency, time.Since(start), dims)
		switch {
		case status >= 500:
			_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTP5xx, dims)
		case status >= 400:
			_ = recorder.RecordCount(ctx, aws_pkg.MetricHTTP4xx, dims)
		}
	}
}

// statusClass maps 404 to "4xx".
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}
