package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/deppfellow/bctw-api/internal/errs"
	"github.com/deppfellow/bctw-api/internal/server"
)

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit allows each caller, identified by user or else by IP, ratePerSecond
// requests per second with bursts of burst.
func (r *RateLimitMiddleware) Limit(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if userID := GetUserID(c); userID != "" {
				return userID, nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Unable to identify caller", false)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			return &errs.HTTPError{
				Code:    "TOO_MANY_REQUESTS",
				Message: "Too many requests",
				Status:  http.StatusTooManyRequests,
			}
		},
	})
}

func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	r.server.Logger.Warn().Str("endpoint", endpoint).Msg("rate limit hit")
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}
