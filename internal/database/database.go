// Package database owns the PostgreSQL connection pool and the single choke
// point every statement goes through.
//
// It handles:
//   - building a pgx connection pool (pgxpool) from config
//   - wiring query tracing/logging (pgx tracelog) and New Relic (nrpgx5)
//   - running embedded tern migrations
//   - executing statements through Gateway, which folds every driver error
//     into an Outcome value
package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/config"
	loggerConfig "github.com/deppfellow/bctw-api/internal/logger"
)

// Database wraps the pgx connection pool and a logger.
//
// The pool is the only shared mutable resource of the process. It is created
// once at start-up and closed on shutdown.
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// multiTracer chains several pgx query tracers behind the single
// ConnConfig.Tracer slot (New Relic and the local SQL log).
type multiTracer struct {
	tracers []any
}

// TraceQueryStart implements pgx.QueryTracer.
func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

// TraceQueryEnd implements pgx.QueryTracer.
func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DatabasePingTimeout is the number of seconds to wait for the start-up ping.
const DatabasePingTimeout = 10

// PoolConfig parses cfg into a pgxpool config with pool sizing and session
// parameters applied, without connecting.
func PoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.MaxConns)
	pgxPoolConfig.MinConns = int32(cfg.MinConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second

	params := pgxPoolConfig.ConnConfig.RuntimeParams
	params["application_name"] = config.ServiceName
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.Itoa(cfg.StatementTimeout)
	}

	return pgxPoolConfig, nil
}

// New creates the PostgreSQL connection pool with instrumentation, pings it,
// and returns the Database.
//
// New Relic tracing is attached when loggerService carries an application.
// In the local environment every statement is also logged through
// pgx tracelog, chained with New Relic when both are active.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := PoolConfig(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Pool: pool,
		log:  logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Int32("max_conns", pgxPoolConfig.MaxConns).
		Str("schema", cfg.Database.Schema).
		Msg("connected to the database")

	return database, nil
}

// LogStats writes the pool counters at debug level. The scheduler calls it
// periodically.
func (db *Database) LogStats() {
	stat := db.Pool.Stat()
	db.log.Debug().
		Int32("acquired", stat.AcquiredConns()).
		Int32("idle", stat.IdleConns()).
		Int32("total", stat.TotalConns()).
		Int32("max", stat.MaxConns()).
		Int64("acquire_count", stat.AcquireCount()).
		Int64("empty_acquire_count", stat.EmptyAcquireCount()).
		Dur("acquire_duration", stat.AcquireDuration()).
		Msg("database pool stats")
}

// Close closes the connection pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
