package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

type AttachmentHandler struct {
	Handler
	attachments *service.AttachmentService
}

func NewAttachmentHandler(s *server.Server, attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{Handler: NewHandler(s), attachments: attachments}
}

func (h *AttachmentHandler) Attach(c echo.Context, req *model.AttachDeviceRequest) (model.Record, error) {
	return h.attachments.Attach(c.Request().Context(), middleware.GetUserID(c), req)
}

func (h *AttachmentHandler) Remove(c echo.Context, req *model.RemoveDeviceRequest) (model.Record, error) {
	return h.attachments.Remove(c.Request().Context(), middleware.GetUserID(c), req)
}

func (h *AttachmentHandler) UpdateDataLife(c echo.Context, req *model.ChangeDataLifeRequest) (model.Record, error) {
	return h.attachments.UpdateDataLife(c.Request().Context(), middleware.GetUserID(c), req)
}

func (h *AttachmentHandler) History(c echo.Context, req *model.AttachmentHistoryRequest) ([]model.Record, error) {
	return h.attachments.History(c.Request().Context(), middleware.GetUserID(c), req.ID())
}
