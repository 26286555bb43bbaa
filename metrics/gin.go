package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// MetricHTTPRequestsTotal HTTP 请求总数 (Counter)
	MetricHTTPRequestsTotal = "http_server_requests_total"

	// MetricHTTPRequestDuration HTTP 请求耗时 (Histogram)
	MetricHTTPRequestDuration = "http_server_request_duration_seconds"

	// unknownRoute 未命中路由时统一收敛，避免原始 URL 作为标签导致高基数
	unknownRoute = "unmatched"
)

// GinMiddleware 返回一个 Gin 中间件，记录 HTTP 请求数与耗时指标
//
// meter 为 nil 时中间件退化为直通。
func GinMiddleware(meter Meter, service string) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	requests, err := meter.Counter(MetricHTTPRequestsTotal, "Total HTTP requests")
	if err != nil {
		requests = &noopCounter{}
	}
	duration, err := meter.Histogram(MetricHTTPRequestDuration, "HTTP request duration", WithUnit("s"))
	if err != nil {
		duration = &noopHistogram{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unknownRoute
		}

		labels := []Label{
			L("service", service),
			L("method", c.Request.Method),
			L("route", route),
			L("status", strconv.Itoa(c.Writer.Status())),
		}
		ctx := c.Request.Context()
		requests.Inc(ctx, labels...)
		duration.Record(ctx, time.Since(start).Seconds(), labels...)
	}
}
