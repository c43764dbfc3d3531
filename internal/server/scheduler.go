package server

import (
	"context"

	"github.com/robfig/cron/v3"
)

const poolStatsSpec = "@every 1m"

// newScheduler registers the periodic maintenance jobs: pool statistics
// and, when enabled, dependency health checks.
func (s *Server) newScheduler() *cron.Cron {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{s})))

	if _, err := c.AddFunc(poolStatsSpec, s.DB.LogStats); err != nil {
		s.Logger.Error().Err(err).Msg("failed to schedule pool stats")
	}

	hc := s.Config.Observability.HealthChecks
	if hc.Enabled {
		if _, err := c.AddFunc(hc.Spec(), s.runHealthChecks); err != nil {
			s.Logger.Error().Err(err).Str("schedule", hc.Spec()).Msg("failed to schedule health checks")
		}
	}

	return c
}

func (s *Server) runHealthChecks() {
	hc := s.Config.Observability.HealthChecks
	ctx, cancel := context.WithTimeout(context.Background(), hc.Timeout)
	defer cancel()

	if _, healthy := s.CheckDependencies(ctx, hc.Checks); !healthy {
		s.Logger.Warn().Strs("checks", hc.Checks).Msg("scheduled health check failed")
	}
}

// cronLogger adapts the server logger to cron.Logger.
type cronLogger struct {
	s *Server
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
