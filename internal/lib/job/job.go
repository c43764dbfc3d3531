// Package job runs notification delivery in the background on an asynq
// queue backed by Redis.
package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/config"
	"github.com/deppfellow/bctw-api/internal/lib/sms"
	"github.com/deppfellow/bctw-api/internal/model"
)

// Mailer sends the emails the task handlers deliver.
type Mailer interface {
	SendMortalityAlert(ev model.MortalityAlertEvent) error
	SendOnboardingRequest(to string, u model.OnboardingUser) error
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type JobService struct {
	client enqueuer
	server *asynq.Server
	logger *zerolog.Logger

	mailer     Mailer
	texter     sms.Sender
	adminEmail string
}

// NewJobService builds the queue client and worker server. texter may be nil,
// in which case alerts are only emailed.
func NewJobService(logger *zerolog.Logger, cfg *config.Config, mailer Mailer, texter sms.Sender) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		Logger: newAsynqLogger(logger),
	})

	return &JobService{
		client:     asynq.NewClient(redisOpt),
		server:     server,
		logger:     logger,
		mailer:     mailer,
		texter:     texter,
		adminEmail: cfg.Notification.AdminEmail,
	}
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskMortalityAlert, j.handleMortalityAlertTask)
	mux.HandleFunc(TaskOnboardingRequest, j.handleOnboardingRequestTask)
	return mux
}

// Start runs the workers in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")
	return j.server.Start(j.mux())
}

// Stop waits for in-flight tasks, then closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
