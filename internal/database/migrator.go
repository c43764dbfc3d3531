package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/config"
)

// Migrations are compiled into the binary, so a container needs nothing but
// the executable.
//
//go:embed migrations/*.sql
var migrations embed.FS

// versionTable records the applied migration version.
const versionTable = "public.schema_version"

// Migrate brings the service-owned objects up to date using jackc/tern.
//
// The service owns only the schemas it addresses and the alert notification
// trigger function; tables, views and the stored functions themselves are
// managed by the data team's own pipeline.
//
// Behavior:
//   - connect with a single pgx connection (not the pool)
//   - load the embedded migrations
//   - migrate to the latest version
//   - log whether anything changed
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	// Template data for the migration files.
	m.Data = map[string]any{
		"Schema":        cfg.Database.Schema,
		"APISchema":     cfg.Database.APISchema,
		"AlertChannel":  cfg.Notification.Channel,
		"ApplicationID": config.ServiceName,
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
