package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"

	"github.com/deppfellow/bctw-api/internal/model"
)

const (
	TaskMortalityAlert    = "alert:mortality"
	TaskOnboardingRequest = "email:onboarding_request"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type OnboardingRequestPayload struct {
	To   string               `json:"to"`
	User model.OnboardingUser `json:"user"`
}

// NewMortalityAlertTask carries one event. Mortality alerts go to the
// critical queue and are retried longer than other mail.
func NewMortalityAlertTask(ev model.MortalityAlertEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskMortalityAlert,
		payload,
		asynq.MaxRetry(10),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewOnboardingRequestTask(to string, u model.OnboardingUser) (*asynq.Task, error) {
	payload, err := json.Marshal(OnboardingRequestPayload{To: to, User: u})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskOnboardingRequest,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueMortalityAlerts queues one task per event. It stops at the first
// event that cannot be queued.
func (j *JobService) EnqueueMortalityAlerts(ctx context.Context, events []model.MortalityAlertEvent) error {
	for _, ev := range events {
		task, err := NewMortalityAlertTask(ev)
		if err != nil {
			return errors.Wrap(err, "failed to build mortality alert task")
		}
		info, err := j.client.EnqueueContext(ctx, task)
		if err != nil {
			return errors.Wrapf(err, "failed to enqueue mortality alert for device %d", ev.DeviceID)
		}
		j.logger.Info().
			Str("task_id", info.ID).
			Int("device_id", ev.DeviceID).
			Str("animal_id", ev.AnimalID).
			Msg("mortality alert queued")
	}
	return nil
}

// EnqueueOnboardingRequest queues the administrator email for a new access
// request. It is a no-op when no administrator address is configured.
func (j *JobService) EnqueueOnboardingRequest(ctx context.Context, u model.OnboardingUser) error {
	if j.adminEmail == "" {
		j.logger.Warn().Str("username", u.Username).Msg("no admin email configured, onboarding request not sent")
		return nil
	}

	task, err := NewOnboardingRequestTask(j.adminEmail, u)
	if err != nil {
		return errors.Wrap(err, "failed to build onboarding request task")
	}
	if _, err := j.client.EnqueueContext(ctx, task); err != nil {
		return errors.Wrap(err, "failed to enqueue onboarding request")
	}
	return nil
}
