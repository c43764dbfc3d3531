package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/handler"
)

// registerSystemRoutes registers the unauthenticated endpoints used by load
// balancers and uptime monitors.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
}
