package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/logger"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/repository"
)

// OnboardingNotifier tells administrators about new access requests.
type OnboardingNotifier interface {
	EnqueueOnboardingRequest(ctx context.Context, u model.OnboardingUser) error
}

type OnboardingService struct {
	repo     *repository.OnboardingRepository
	notifier OnboardingNotifier
}

func NewOnboardingService(repo *repository.OnboardingRepository, notifier OnboardingNotifier) *OnboardingService {
	return &OnboardingService{repo: repo, notifier: notifier}
}

// Submit stores an access request and emails the administrators. The
// request stands when the email cannot be queued.
func (s *OnboardingService) Submit(ctx context.Context, req *model.SubmitOnboardingRequest) (model.Record, error) {
	rec, err := s.repo.Submit(ctx, req.User)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.EnqueueOnboardingRequest(ctx, req.User); err != nil {
		nop := zerolog.Nop()
		logger.FromContext(ctx, &nop).Error().
			Err(err).
			Str("username", req.User.Username).
			Msg("failed to notify administrators of onboarding request")
	}
	return rec, nil
}

func (s *OnboardingService) Handle(ctx context.Context, user string, req *model.HandleOnboardingRequest) (model.Record, error) {
	return s.repo.Handle(ctx, user, req)
}

func (s *OnboardingService) List(ctx context.Context) ([]model.Record, error) {
	return s.repo.List(ctx)
}

// Status returns the latest request state of the caller's identity, or nil
// when it never submitted one.
func (s *OnboardingService) Status(ctx context.Context, domain, username string) (*model.OnboardingStatus, error) {
	return s.repo.Status(ctx, domain, username)
}
