// Package router builds the echo instance: global middleware, the system
// routes and the authenticated /api/v1 routes.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/handler"
	"github.com/deppfellow/bctw-api/internal/middleware"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/server"
)

const (
	requestsPerSecond = 20
	requestBurst      = 40
	maxBodySize       = "4M"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.RateLimit.Limit(requestsPerSecond, requestBurst),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.BodyLimit(maxBodySize),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api/v1", middlewares.Auth.RequireAuth, middlewares.ContextEnhancer.EnhanceContext())
	registerAnimalRoutes(api, h.Animal)
	registerCollarRoutes(api, h.Collar)
	registerAttachmentRoutes(api, h.Attachment)
	registerCodeRoutes(api, h.Code)
	registerAlertRoutes(api, h.Alert)
	registerUserRoutes(api, h.User)
	registerOnboardingRoutes(api, h.Onboarding)

	return router
}

func registerAnimalRoutes(g *echo.Group, h *handler.AnimalHandler) {
	g.GET("/animals", handler.Handle(h.Handler, h.List, http.StatusOK, &model.ListAnimalsRequest{}))
	g.POST("/animals", handler.Handle(h.Handler, h.Upsert, http.StatusOK, &model.Batch[model.Animal]{}))
	g.DELETE("/animals", handler.HandleNoContent(h.Handler, h.Delete, http.StatusNoContent, &model.DeleteAnimalsRequest{}))
	g.GET("/animals/:critter_id", handler.Handle(h.Handler, h.Get, http.StatusOK, &model.AnimalIDRequest{}))
	g.GET("/animals/:critter_id/history", handler.Handle(h.Handler, h.History, http.StatusOK, &model.AnimalHistoryRequest{}))
}

func registerCollarRoutes(g *echo.Group, h *handler.CollarHandler) {
	g.GET("/collars/available", handler.Handle(h.Handler, h.ListAvailable, http.StatusOK, &model.ListQuery{}))
	g.GET("/collars/assigned", handler.Handle(h.Handler, h.ListAssigned, http.StatusOK, &model.ListQuery{}))
	g.POST("/collars", handler.Handle(h.Handler, h.Add, http.StatusOK, &model.Batch[model.Collar]{}))
	g.PUT("/collars", handler.Handle(h.Handler, h.Update, http.StatusOK, &model.Batch[model.Collar]{}))
	g.GET("/collars/:collar_id/history", handler.Handle(h.Handler, h.History, http.StatusOK, &model.CollarIDRequest{}))
}

func registerAttachmentRoutes(g *echo.Group, h *handler.AttachmentHandler) {
	g.POST("/attachments", handler.Handle(h.Handler, h.Attach, http.StatusCreated, &model.AttachDeviceRequest{}))
	g.POST("/attachments/remove", handler.Handle(h.Handler, h.Remove, http.StatusOK, &model.RemoveDeviceRequest{}))
	g.PUT("/attachments/data-life", handler.Handle(h.Handler, h.UpdateDataLife, http.StatusOK, &model.ChangeDataLifeRequest{}))
	g.GET("/animals/:critter_id/attachments", handler.Handle(h.Handler, h.History, http.StatusOK, &model.AttachmentHistoryRequest{}))
}

func registerCodeRoutes(g *echo.Group, h *handler.CodeHandler) {
	g.GET("/codes", handler.Handle(h.Handler, h.Codes, http.StatusOK, &model.ListCodesRequest{}))
	g.POST("/codes", handler.Handle(h.Handler, h.Add, http.StatusOK, &model.AddCodesRequest{}))
	g.GET("/code-headers", handler.Handle(h.Handler, h.Headers, http.StatusOK, &model.ListCodeHeadersRequest{}))
	g.POST("/code-headers", handler.Handle(h.Handler, h.AddHeaders, http.StatusOK, &model.Batch[model.CodeHeaderInput]{}))
}

func registerAlertRoutes(g *echo.Group, h *handler.AlertHandler) {
	g.GET("/alerts", handler.Handle(h.Handler, h.List, http.StatusOK, &model.EmptyRequest{}))
	g.PUT("/alerts", handler.Handle(h.Handler, h.Update, http.StatusOK, &model.Batch[model.TelemetryAlert]{}))
	g.POST("/alerts/test-notification", handler.HandleNoContent(h.Handler, h.TestNotification, http.StatusAccepted, &model.TestNotificationRequest{}))
}

func registerUserRoutes(g *echo.Group, h *handler.UserHandler) {
	g.GET("/users", handler.Handle(h.Handler, h.List, http.StatusOK, &model.EmptyRequest{}))
	g.POST("/users", handler.Handle(h.Handler, h.Add, http.StatusCreated, &model.AddUserRequest{}))
	g.GET("/users/role", handler.Handle(h.Handler, h.Role, http.StatusOK, &model.EmptyRequest{}))
	g.POST("/users/critters", handler.Handle(h.Handler, h.AssignCritters, http.StatusOK, &model.AssignCrittersRequest{}))
}

func registerOnboardingRoutes(g *echo.Group, h *handler.OnboardingHandler) {
	g.GET("/onboarding", handler.Handle(h.Handler, h.List, http.StatusOK, &model.EmptyRequest{}))
	g.POST("/onboarding", handler.Handle(h.Handler, h.Submit, http.StatusCreated, &model.SubmitOnboardingRequest{}))
	g.POST("/onboarding/handle", handler.Handle(h.Handler, h.Decide, http.StatusOK, &model.HandleOnboardingRequest{}))
	g.GET("/onboarding/status", handler.Handle(h.Handler, h.Status, http.StatusOK, &model.OnboardingStatusRequest{}))
}
