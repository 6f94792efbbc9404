package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fx0883/productsShow/prometheus"
)

// MetricsMiddleware records request counts and latency per route. The route
// template (c.Path) is used rather than the raw URL so tenant and entity IDs
// do not explode the label cardinality.
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		method := c.Request().Method
		path := c.Path()
		status := strconv.Itoa(c.Response().Status)

		prometheus.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

		return err
	}
}
