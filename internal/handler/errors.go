package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/prometheus"
)

// writeError maps domain errors to client responses. Quota and tenant
// context failures are business rejections, never server faults.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	if qe, ok := apperrors.IsQuotaExceeded(err); ok {
		prometheus.RecordQuotaRejection(qe.Kind)
		log.Warn("Request rejected by quota",
			zap.String("kind", qe.Kind),
			zap.Int("limit", qe.Limit),
			zap.Float64("current", qe.Current))
		return c.JSON(http.StatusForbidden, echo.Map{
			"error":   "quota exceeded",
			"kind":    qe.Kind,
			"limit":   qe.Limit,
			"current": qe.Current,
		})
	}

	switch {
	case errors.Is(err, apperrors.ErrMissingTenantContext):
		prometheus.TenantContextMissingCounter.Inc()
		log.Warn("Write rejected: no tenant context")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "no tenant could be determined for this request",
		})
	case errors.Is(err, apperrors.ErrTenantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	case errors.Is(err, apperrors.ErrTenantInactive):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant is not active"})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	log.Error("Request failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
