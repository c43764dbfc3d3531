package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

type AnimalHandler struct {
	Handler
	animals *service.AnimalService
}

func NewAnimalHandler(s *server.Server, animals *service.AnimalService) *AnimalHandler {
	return &AnimalHandler{Handler: NewHandler(s), animals: animals}
}

func (h *AnimalHandler) List(c echo.Context, req *model.ListAnimalsRequest) ([]model.AnimalSummary, error) {
	return h.animals.List(c.Request().Context(), middleware.GetUserID(c), req)
}

func (h *AnimalHandler) Get(c echo.Context, req *model.AnimalIDRequest) (model.Record, error) {
	return h.animals.Get(c.Request().Context(), middleware.GetUserID(c), req.ID())
}

func (h *AnimalHandler) Upsert(c echo.Context, req *model.Batch[model.Animal]) (bulk.Response[model.Record], error) {
	return h.animals.Upsert(c.Request().Context(), middleware.GetUserID(c), req.Items)
}

func (h *AnimalHandler) Delete(c echo.Context, req *model.DeleteAnimalsRequest) error {
	return h.animals.Delete(c.Request().Context(), middleware.GetUserID(c), req.CritterIDs)
}

func (h *AnimalHandler) History(c echo.Context, req *model.AnimalHistoryRequest) ([]model.Record, error) {
	return h.animals.History(c.Request().Context(), middleware.GetUserID(c), req.ID(), req.Page)
}
