package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

type CodeHandler struct {
	Handler
	codes *service.CodeService
}

func NewCodeHandler(s *server.Server, codes *service.CodeService) *CodeHandler {
	return &CodeHandler{Handler: NewHandler(s), codes: codes}
}

func (h *CodeHandler) Codes(c echo.Context, req *model.ListCodesRequest) ([]model.Code, error) {
	return h.codes.Codes(c.Request().Context(), middleware.GetUserID(c), req)
}

func (h *CodeHandler) Headers(c echo.Context, req *model.ListCodeHeadersRequest) ([]model.CodeHeader, error) {
	return h.codes.Headers(c.Request().Context(), req.CodeType)
}

func (h *CodeHandler) AddHeaders(c echo.Context, req *model.Batch[model.CodeHeaderInput]) (bulk.Response[model.Record], error) {
	return h.codes.AddHeaders(c.Request().Context(), middleware.GetUserID(c), req.Items)
}

func (h *CodeHandler) Add(c echo.Context, req *model.AddCodesRequest) (bulk.Response[model.Record], error) {
	return h.codes.Add(c.Request().Context(), middleware.GetUserID(c), req.Codes)
}
