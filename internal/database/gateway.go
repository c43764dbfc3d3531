package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	loggerConfig "github.com/deppfellow/bctw-api/internal/logger"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

// Querier is the part of *pgxpool.Pool the Gateway uses. Each call acquires
// a pooled connection and releases it when the rows are closed or the
// transaction ends.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ResultSet is a fully read result: column names in order and one map per
// row keyed by column name.
type ResultSet struct {
	Columns []string
	Rows    []map[string]any
}

// HasColumn reports whether the result set has a column called name.
func (rs *ResultSet) HasColumn(name string) bool {
	if rs == nil {
		return false
	}
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// OutcomeError is the error half of an Outcome. Message is the caller's
// context message when one was given, otherwise the driver's message.
type OutcomeError struct {
	Message string
	Cause   error
}

// Outcome is the uniform result of Gateway.Execute. When IsError is set Error
// is non-nil and Result is nil; otherwise Result is non-nil.
type Outcome struct {
	Result  *ResultSet
	Error   *OutcomeError
	IsError bool
}

// Err returns the outcome as an error, nil on success.
func (o Outcome) Err() error {
	if !o.IsError {
		return nil
	}
	return &DatabaseError{Message: o.Error.Message, Cause: o.Error.Cause}
}

// DatabaseError is a statement rejected by the driver or the database:
// constraint violations, exceptions raised by stored functions, connectivity
// failures and timeouts.
type DatabaseError struct {
	Message string
	Cause   error
}

func (e *DatabaseError) Error() string {
	return e.Message
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// PgError returns the server-side error, if the failure came from PostgreSQL.
func (e *DatabaseError) PgError() (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(e.Cause, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// Gateway executes statements against the pool. It never retries and never
// returns a driver error past its boundary: every failure becomes an
// error Outcome.
type Gateway struct {
	db   Querier
	log  *zerolog.Logger
	slow time.Duration
}

// NewGateway returns a Gateway over db. Statements slower than slowThreshold
// are logged at warn level; zero disables that.
func NewGateway(db Querier, logger *zerolog.Logger, slowThreshold time.Duration) *Gateway {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Gateway{db: db, log: logger, slow: slowThreshold}
}

// Gateway returns a Gateway over the pool.
func (db *Database) Gateway(slowThreshold time.Duration) *Gateway {
	return NewGateway(db.Pool, db.log, slowThreshold)
}

// Execute runs stmt and reads the whole result.
//
// Write statements run in their own transaction, committed on success and
// rolled back on any error, so a failure partway through leaves nothing
// behind. Cancelling ctx aborts the in-flight statement and releases its
// connection. contextMessage, when non-empty, replaces the driver message
// in the Outcome and in the log.
func (g *Gateway) Execute(ctx context.Context, stmt sqlbuild.Statement, contextMessage string) (out Outcome) {
	log := loggerConfig.FromContext(ctx, g.log)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out = g.fail(log, stmt, contextMessage, fmt.Errorf("statement execution panicked: %v", r))
		}
	}()

	var (
		rs  *ResultSet
		err error
	)
	if stmt.Write {
		rs, err = g.inTx(ctx, log, stmt.SQL)
	} else {
		rs, err = collect(ctx, g.db, stmt.SQL)
	}
	elapsed := time.Since(start)

	if err != nil {
		return g.fail(log, stmt, contextMessage, err)
	}

	if g.slow > 0 && elapsed > g.slow {
		log.Warn().
			Dur("duration", elapsed).
			Bool("write", stmt.Write).
			Str("statement", truncate(stmt.SQL)).
			Msg("slow statement")
	} else {
		log.Debug().
			Dur("duration", elapsed).
			Int("rows", rs.Len()).
			Msg("statement executed")
	}

	return Outcome{Result: rs}
}

func (g *Gateway) inTx(ctx context.Context, log *zerolog.Logger, sql string) (*ResultSet, error) {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return nil, err
	}

	done := false
	defer func() {
		if done {
			return
		}
		// The request context may already be cancelled; the rollback still
		// has to reach the server to release the connection cleanly.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).Msg("failed to roll back transaction")
		}
	}()

	rs, err := collect(ctx, tx, sql)
	if err != nil {
		return nil, err
	}

	done = true
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rs, nil
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// collect runs sql over the simple protocol, since every value is already
// inlined as a literal, and reads all rows before returning.
func collect(ctx context.Context, q rowQuerier, sql string) (*ResultSet, error) {
	rows, err := q.Query(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, err
	}

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	data, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []map[string]any{}
	}

	return &ResultSet{Columns: columns, Rows: data}, nil
}

func (g *Gateway) fail(log *zerolog.Logger, stmt sqlbuild.Statement, contextMessage string, err error) Outcome {
	message := contextMessage
	if message == "" {
		message = driverMessage(err)
	}

	var event *zerolog.Event
	if errors.Is(err, context.Canceled) {
		event = log.Info()
	} else {
		event = log.Error()
	}

	event = event.Err(err).Bool("write", stmt.Write)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		event = event.Str("sqlstate", pgErr.Code).Str("routine", pgErr.Routine)
	}
	event.Str("statement", truncate(stmt.SQL)).Msg(message)

	return Outcome{
		IsError: true,
		Error:   &OutcomeError{Message: message, Cause: err},
	}
}

func driverMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	return err.Error()
}

const maxLoggedStatement = 500

func truncate(sql string) string {
	if len(sql) <= maxLoggedStatement {
		return sql
	}
	return sql[:maxLoggedStatement] + "..."
}
