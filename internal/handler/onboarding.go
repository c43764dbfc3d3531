package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/errs"
	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

type OnboardingHandler struct {
	Handler
	onboarding *service.OnboardingService
}

func NewOnboardingHandler(s *server.Server, onboarding *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{Handler: NewHandler(s), onboarding: onboarding}
}

func (h *OnboardingHandler) Submit(c echo.Context, req *model.SubmitOnboardingRequest) (model.Record, error) {
	return h.onboarding.Submit(c.Request().Context(), req)
}

func (h *OnboardingHandler) Decide(c echo.Context, req *model.HandleOnboardingRequest) (model.Record, error) {
	return h.onboarding.Handle(c.Request().Context(), middleware.GetUserID(c), req)
}

func (h *OnboardingHandler) List(c echo.Context, _ *model.EmptyRequest) ([]model.Record, error) {
	return h.onboarding.List(c.Request().Context())
}

// Status reports the caller's latest request. A caller who never submitted
// one gets a 404 redirecting to the request form.
func (h *OnboardingHandler) Status(c echo.Context, req *model.OnboardingStatusRequest) (*model.OnboardingStatus, error) {
	status, err := h.onboarding.Status(c.Request().Context(), req.Domain, middleware.GetUserID(c))
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, &errs.HTTPError{
			Code:    "ONBOARDING_NOT_FOUND",
			Message: "No onboarding request was submitted",
			Status:  http.StatusNotFound,
			Action: &errs.Action{
				Type:    errs.ActionTypeRedirect,
				Message: "Submit an onboarding request",
				Value:   "/onboarding",
			},
		}
	}
	return status, nil
}
