package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

type CollarHandler struct {
	Handler
	collars *service.CollarService
}

func NewCollarHandler(s *server.Server, collars *service.CollarService) *CollarHandler {
	return &CollarHandler{Handler: NewHandler(s), collars: collars}
}

func (h *CollarHandler) ListAvailable(c echo.Context, req *model.ListQuery) ([]model.Collar, error) {
	return h.collars.ListAvailable(c.Request().Context(), req)
}

func (h *CollarHandler) ListAssigned(c echo.Context, req *model.ListQuery) ([]model.AssignedCollar, error) {
	return h.collars.ListAssigned(c.Request().Context(), middleware.GetUserID(c), req)
}

func (h *CollarHandler) Add(c echo.Context, req *model.Batch[model.Collar]) (bulk.Response[model.Record], error) {
	return h.collars.Add(c.Request().Context(), middleware.GetUserID(c), req.Items)
}

func (h *CollarHandler) Update(c echo.Context, req *model.Batch[model.Collar]) (bulk.Response[model.Record], error) {
	return h.collars.Update(c.Request().Context(), middleware.GetUserID(c), req.Items)
}

func (h *CollarHandler) History(c echo.Context, req *model.CollarIDRequest) ([]model.Record, error) {
	return h.collars.History(c.Request().Context(), middleware.GetUserID(c), req.ID())
}
