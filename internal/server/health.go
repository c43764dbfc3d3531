package server

import (
	"context"
	"time"
)

const (
	CheckDatabase = "database"
	CheckRedis    = "redis"

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the outcome of probing one dependency.
type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// CheckDependencies pings the named dependencies and reports whether all of
// them answered. Failures are logged and recorded as New Relic events.
func (s *Server) CheckDependencies(ctx context.Context, checks []string) (map[string]CheckResult, bool) {
	results := make(map[string]CheckResult, len(checks))
	healthy := true

	for _, name := range checks {
		var ping func(context.Context) error
		switch name {
		case CheckDatabase:
			ping = s.DB.Pool.Ping
		case CheckRedis:
			if s.Redis == nil {
				continue
			}
			ping = func(ctx context.Context) error { return s.Redis.Ping(ctx).Err() }
		default:
			continue
		}

		start := time.Now()
		err := ping(ctx)
		elapsed := time.Since(start)

		if err != nil {
			healthy = false
			results[name] = CheckResult{Status: StatusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}

			s.Logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
			s.recordEvent("HealthCheckError", map[string]any{
				"check_type":       name,
				"error_type":       name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
			continue
		}

		results[name] = CheckResult{Status: StatusHealthy, ResponseTime: elapsed.String()}
	}

	return results, healthy
}

func (s *Server) recordEvent(name string, attrs map[string]any) {
	if s.LoggerService == nil || s.LoggerService.GetApplication() == nil {
		return
	}
	s.LoggerService.GetApplication().RecordCustomEvent(name, attrs)
}
