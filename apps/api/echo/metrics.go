package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests processed, partitioned by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency, partitioned by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

// metricsMiddleware records request counts and latencies once the response is
// written, so statuses set by the error handler are included.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			ctx.Response().After(func() {
				route := ctx.Path()
				if route == "" {
					route = ctx.Request().URL.Path
				}
				method := ctx.Request().Method
				requestsTotal.WithLabelValues(method, route, strconv.Itoa(ctx.Response().Status)).Inc()
				requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			})
			return next(ctx)
		}
	}
}
