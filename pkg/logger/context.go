package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const RequestIDKey = "X-Request-ID"

// FromContext returns the request-scoped logger. The request ID middleware
// stores one enriched with request_id; authenticated requests additionally
// carry tenant_id. Falls back to the global logger when neither is set.
func FromContext(c echo.Context) *zap.Logger {
	if log, ok := c.Get("logger").(*zap.Logger); ok {
		if tenantID, ok := c.Get("tenant_id").(uint); ok {
			return log.With(zap.Uint("tenant_id", tenantID))
		}
		return log
	}

	requestID, ok := c.Get(RequestIDKey).(string)
	if !ok {
		requestID = c.Request().Header.Get(RequestIDKey)
	}
	if requestID == "" {
		requestID = "unknown"
	}
	return GetLogger().With(zap.String("request_id", requestID))
}
