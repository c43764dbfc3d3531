package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/bctw-api/internal/config"
	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/handler"
	"github.com/deppfellow/bctw-api/internal/logger"
	"github.com/deppfellow/bctw-api/internal/repository"
	"github.com/deppfellow/bctw-api/internal/router"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/service"
)

const shutdownTimeout = 30 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server, the job workers and the alert listener",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply database migrations before serving")
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if migrateOnStart {
		if err := database.Migrate(ctx, &log, cfg); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return err
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Error().Err(err).Msg("could not create services")
		return err
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("shutdown failed")
		}
		return err

	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
