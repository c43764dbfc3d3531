package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/bctw-api/internal/lib/sms"
	"github.com/deppfellow/bctw-api/internal/model"
)

// handleMortalityAlertTask emails and texts the owner of the device. A
// failed text does not fail the task once the email is out, since a retry
// would email the user again.
func (j *JobService) handleMortalityAlertTask(ctx context.Context, t *asynq.Task) error {
	var ev model.MortalityAlertEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return fmt.Errorf("failed to unmarshal mortality alert payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskMortalityAlert).
		Int("device_id", ev.DeviceID).
		Int("user_id", ev.UserID).
		Logger()

	log.Info().Msg("processing mortality alert")

	if ev.Email != "" {
		if err := j.mailer.SendMortalityAlert(ev); err != nil {
			log.Error().Err(err).Msg("failed to email mortality alert")
			return err
		}
	}

	if ev.Phone != "" && j.texter != nil {
		if err := j.texter.Send(ctx, ev.Phone, sms.MortalityAlertText(ev)); err != nil {
			log.Error().Err(err).Msg("failed to text mortality alert")
			if ev.Email == "" {
				return err
			}
		}
	}

	log.Info().Msg("mortality alert delivered")
	return nil
}

func (j *JobService) handleOnboardingRequestTask(ctx context.Context, t *asynq.Task) error {
	var p OnboardingRequestPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal onboarding request payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskOnboardingRequest).
		Str("to", p.To).
		Str("username", p.User.Username).
		Logger()

	if err := j.mailer.SendOnboardingRequest(p.To, p.User); err != nil {
		log.Error().Err(err).Msg("failed to send onboarding request email")
		return err
	}

	log.Info().Msg("onboarding request email sent")
	return nil
}
