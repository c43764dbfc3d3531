// Package notify turns Postgres notifications into queued jobs.
//
// Alert triggers in the database call notify_mortality_alerts, which
// publishes a JSON array of events on the alert channel. The Listener holds
// one pool connection LISTENing on that channel and enqueues every event it
// receives.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/model"
)

// Enqueuer queues alert deliveries.
type Enqueuer interface {
	EnqueueMortalityAlerts(ctx context.Context, events []model.MortalityAlertEvent) error
}

type Listener struct {
	pool     *pgxpool.Pool
	channel  string
	backoff  time.Duration
	enqueuer Enqueuer
	logger   *zerolog.Logger
}

func NewListener(pool *pgxpool.Pool, channel string, backoff time.Duration, enqueuer Enqueuer, logger *zerolog.Logger) *Listener {
	l := logger.With().Str("component", "notify").Str("channel", channel).Logger()
	return &Listener{
		pool:     pool,
		channel:  channel,
		backoff:  backoff,
		enqueuer: enqueuer,
		logger:   &l,
	}
}

// Run listens until ctx is cancelled, reconnecting after backoff whenever the
// connection is lost. It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			l.logger.Info().Msg("listener stopped")
			return nil
		}

		l.logger.Warn().Err(err).Dur("backoff", l.backoff).Msg("listener connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	channel := pgx.Identifier{l.channel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return fmt.Errorf("listen on %s: %w", l.channel, err)
	}
	// The connection goes back to the pool, so it must not keep receiving.
	defer func() {
		unlistenCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(unlistenCtx, "UNLISTEN "+channel); err != nil {
			l.logger.Warn().Err(err).Msg("failed to unlisten, discarding connection")
			_ = conn.Conn().Close(unlistenCtx)
		}
	}()

	l.logger.Info().Msg("listening for alerts")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.Handle(ctx, n.Payload)
	}
}

// Handle decodes one notification payload and enqueues its events. Failures
// are logged; a bad payload must not stop the listener.
func (l *Listener) Handle(ctx context.Context, payload string) {
	events, err := DecodeEvents(payload)
	if err != nil {
		l.logger.Error().Err(err).Str("payload", truncate(payload)).Msg("discarding malformed alert notification")
		return
	}
	if len(events) == 0 {
		return
	}

	if err := l.enqueuer.EnqueueMortalityAlerts(ctx, events); err != nil {
		l.logger.Error().Err(err).Int("events", len(events)).Msg("failed to enqueue mortality alerts")
		return
	}
	l.logger.Info().Int("events", len(events)).Msg("mortality alerts received")
}

// DecodeEvents reads a payload holding one event or an array of them.
func DecodeEvents(payload string) ([]model.MortalityAlertEvent, error) {
	if payload == "" {
		return nil, errors.New("empty payload")
	}
	var events model.OneOrMany[model.MortalityAlertEvent]
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		return nil, fmt.Errorf("decode alert payload: %w", err)
	}
	return []model.MortalityAlertEvent(events), nil
}

func truncate(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
