package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/repository"
)

// AlertNotifier queues mortality alert notifications.
type AlertNotifier interface {
	EnqueueMortalityAlerts(ctx context.Context, events []model.MortalityAlertEvent) error
}

type AlertService struct {
	repo     *repository.AlertRepository
	notifier AlertNotifier
}

func NewAlertService(repo *repository.AlertRepository, notifier AlertNotifier) *AlertService {
	return &AlertService{repo: repo, notifier: notifier}
}

func (s *AlertService) List(ctx context.Context, user string) ([]model.Record, error) {
	return s.repo.List(ctx, user)
}

func (s *AlertService) Update(ctx context.Context, user string, alerts []model.TelemetryAlert) ([]model.Record, error) {
	return s.repo.Update(ctx, user, alerts)
}

// SendTestNotification queues a sample mortality alert to the given phone
// and email so users can check they receive alerts.
func (s *AlertService) SendTestNotification(ctx context.Context, req *model.TestNotificationRequest) error {
	return s.notifier.EnqueueMortalityAlerts(ctx, []model.MortalityAlertEvent{testMortalityEvent(req, time.Now())})
}

func testMortalityEvent(req *model.TestNotificationRequest, now time.Time) model.MortalityAlertEvent {
	return model.MortalityAlertEvent{
		AnimalID:  "TEST",
		WLHID:     "00-0000",
		Species:   "Caribou",
		DeviceID:  12345,
		Frequency: decimal.RequireFromString("150.050"),
		DateTime:  now.UTC().Format(time.RFC3339),
		Latitude:  54.0,
		Longitude: -125.0,
		FirstName: "BCTW user",
		Phone:     req.Phone,
		Email:     req.Email,
	}
}
