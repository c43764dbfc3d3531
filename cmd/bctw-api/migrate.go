package main

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/bctw-api/internal/config"
	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		log := logger.NewLogger(cfg.Observability)
		if err := database.Migrate(cmd.Context(), &log, cfg); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return err
		}
		return nil
	},
}
