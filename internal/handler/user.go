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

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{Handler: NewHandler(s), users: users}
}

type AddUserResponse struct {
	Added bool `json:"added"`
}

type RoleResponse struct {
	Role string `json:"role"`
}

func (h *UserHandler) Add(c echo.Context, req *model.AddUserRequest) (AddUserResponse, error) {
	added, err := h.users.Add(c.Request().Context(), req)
	return AddUserResponse{Added: added}, err
}

// Role answers 403 with an onboard action when the caller is authenticated
// but has no BCTW user.
func (h *UserHandler) Role(c echo.Context, _ *model.EmptyRequest) (RoleResponse, error) {
	role, err := h.users.Role(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return RoleResponse{}, err
	}
	if role == "" {
		return RoleResponse{}, errNotOnboarded()
	}
	return RoleResponse{Role: role}, nil
}

func (h *UserHandler) List(c echo.Context, _ *model.EmptyRequest) ([]model.User, error) {
	return h.users.List(c.Request().Context(), middleware.GetUserID(c))
}

func (h *UserHandler) AssignCritters(c echo.Context, req *model.AssignCrittersRequest) ([]model.Record, error) {
	return h.users.AssignCritters(c.Request().Context(), middleware.GetUserID(c), req)
}

func errNotOnboarded() *errs.HTTPError {
	return &errs.HTTPError{
		Code:     "USER_NOT_ONBOARDED",
		Message:  "You do not have access to BCTW yet",
		Status:   http.StatusForbidden,
		Override: true,
		Action: &errs.Action{
			Type:    errs.ActionTypeOnboard,
			Message: "Request access to BCTW",
			Value:   "/onboarding",
		},
	}
}
