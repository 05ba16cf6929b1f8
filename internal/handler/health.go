package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pinger is a dependency that can report its reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health. The database is required; the cache is reported
// but does not make the service unhealthy.
func Health(db *gorm.DB, cache Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := echo.Map{"status": "ok", "database": "up"}
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger.FromEcho(c).Error("Database health check failed", zap.Error(err))
			status["status"] = "unavailable"
			status["database"] = "down"
			code = http.StatusServiceUnavailable
		}

		switch {
		case cache == nil:
			status["cache"] = "disabled"
		case cache.Ping(ctx) != nil:
			status["cache"] = "down"
		default:
			status["cache"] = "up"
		}

		return c.JSON(code, status)
	}
}
