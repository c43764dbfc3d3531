package service

import (
	"github.com/deppfellow/bctw-api/internal/lib/job"
	"github.com/deppfellow/bctw-api/internal/repository"
	"github.com/deppfellow/bctw-api/internal/server"
)

type Services struct {
	Auth       *AuthService
	Job        *job.JobService
	Animal     *AnimalService
	Collar     *CollarService
	Attachment *AttachmentService
	Code       *CodeService
	Alert      *AlertService
	User       *UserService
	Onboarding *OnboardingService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	return &Services{
		Job:        s.Job,
		Auth:       authService,
		Animal:     NewAnimalService(repos.Animal),
		Collar:     NewCollarService(repos.Collar),
		Attachment: NewAttachmentService(repos.Attachment),
		Code:       NewCodeService(repos.Code),
		Alert:      NewAlertService(repos.Alert, s.Job),
		User:       NewUserService(repos.User),
		Onboarding: NewOnboardingService(repos.Onboarding, s.Job),
	}, nil
}
