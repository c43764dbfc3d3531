package handler

import (
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health     *HealthHandler
	Animal     *AnimalHandler
	Collar     *CollarHandler
	Attachment *AttachmentHandler
	Code       *CodeHandler
	Alert      *AlertHandler
	User       *UserHandler
	Onboarding *OnboardingHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		Animal:     NewAnimalHandler(s, services.Animal),
		Collar:     NewCollarHandler(s, services.Collar),
		Attachment: NewAttachmentHandler(s, services.Attachment),
		Code:       NewCodeHandler(s, services.Code),
		Alert:      NewAlertHandler(s, services.Alert),
		User:       NewUserHandler(s, services.User),
		Onboarding: NewOnboardingHandler(s, services.Onboarding),
	}
}
