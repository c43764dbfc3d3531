package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

type AlertHandler struct {
	Handler
	alerts *service.AlertService
}

func NewAlertHandler(s *server.Server, alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{Handler: NewHandler(s), alerts: alerts}
}

func (h *AlertHandler) List(c echo.Context, _ *model.EmptyRequest) ([]model.Record, error) {
	return h.alerts.List(c.Request().Context(), middleware.GetUserID(c))
}

func (h *AlertHandler) Update(c echo.Context, req *model.Batch[model.TelemetryAlert]) ([]model.Record, error) {
	return h.alerts.Update(c.Request().Context(), middleware.GetUserID(c), req.Items)
}

func (h *AlertHandler) TestNotification(c echo.Context, req *model.TestNotificationRequest) error {
	return h.alerts.SendTestNotification(c.Request().Context(), req)
}
