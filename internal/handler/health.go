package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/server"
)

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth probes the database and Redis. It answers 503 when the
// database is unreachable; an unreachable Redis is reported but only slows
// code lookups, so the service stays healthy.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	timeout := 5 * time.Second
	if hc := h.server.Config.Observability; hc != nil && hc.HealthChecks.Timeout > 0 {
		timeout = hc.HealthChecks.Timeout
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	checks, _ := h.server.CheckDependencies(ctx, []string{server.CheckDatabase, server.CheckRedis})
	healthy := checks[server.CheckDatabase].Status == server.StatusHealthy

	response := map[string]interface{}{
		"status":      server.StatusHealthy,
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !healthy {
		response["status"] = server.StatusUnhealthy
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}
