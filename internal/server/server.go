// Package server holds the application container: configuration, logging,
// the database pool, Redis, the job queue, the alert listener, the scheduler
// and the HTTP server, along with their start and shutdown order.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/config"
	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/lib/email"
	"github.com/deppfellow/bctw-api/internal/lib/job"
	"github.com/deppfellow/bctw-api/internal/lib/notify"
	"github.com/deppfellow/bctw-api/internal/lib/sms"
	loggerPkg "github.com/deppfellow/bctw-api/internal/logger"
)

type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database
	Redis         *redis.Client
	Job           *job.JobService

	httpServer *http.Server
	listener   *notify.Listener
	scheduler  *cron.Cron

	background *background
}

// New connects to the database and Redis and builds, without starting, the
// job workers, the alert listener and the scheduler.
//
// A Redis that does not answer at startup is logged and tolerated; the code
// cache and the job queue retry on their own.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})
	if loggerService != nil && loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("failed to connect to Redis, continuing without it")
	}

	var texter sms.Sender
	smsClient, err := sms.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	if smsClient != nil {
		texter = smsClient
	} else {
		logger.Warn().Msg("plivo credentials not set, alerts are sent by email only")
	}

	jobService := job.NewJobService(logger, cfg, email.NewClient(cfg, logger), texter)

	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Job:           jobService,
		listener: notify.NewListener(db.Pool, cfg.Notification.Channel, cfg.Notification.ReconnectBackoff,
			jobService, logger),
		background: newBackground(),
	}
	s.scheduler = s.newScheduler()

	return s, nil
}

func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start launches the background workers, then serves HTTP until the server
// is shut down. It requires SetupHTTPServer.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	if err := s.Job.Start(); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}

	s.background.Go(func(ctx context.Context) {
		if err := s.listener.Run(ctx); err != nil {
			s.Logger.Error().Err(err).Msg("alert listener exited")
		}
	})

	s.scheduler.Start()

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then stops the background work and closes the connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	<-s.scheduler.Stop().Done()
	if s.background != nil {
		s.background.Stop()
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if err := s.Redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
	}

	if err := s.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
	}

	return errors.Join(errs...)
}
