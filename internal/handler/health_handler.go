package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/fx0883/productsShow/pkg/logger"
)

// Health reports process liveness plus database reachability.
func Health(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			log.Error("Health check failed: database unreachable")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status":   "degraded",
				"database": "unreachable",
			})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"status":   "ok",
			"database": "ok",
		})
	}
}
