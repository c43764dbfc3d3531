package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/bctw-api/internal/server"
)

// TracingMiddleware installs New Relic transactions. nrApp is nil when New
// Relic is disabled and both middlewares become pass-throughs.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing names the transaction after the route and records the
// caller, the path parameters and the classified status. Client errors are
// noticed as expected so they do not count against the error rate. Must run
// after NewRelicMiddleware.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("request.id", GetRequestID(c))
			for _, name := range c.ParamNames() {
				txn.AddAttribute("bctw."+name, c.Param(name))
			}

			err := next(c)

			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("enduser.id", userID)
			}

			status := c.Response().Status
			if err != nil {
				httpErr := toHTTPError(err)
				status = httpErr.Status
				txn.AddAttribute("error.code", httpErr.Code)
				if status >= http.StatusInternalServerError {
					txn.NoticeError(nrpkgerrors.Wrap(err))
				} else {
					txn.NoticeExpectedError(err)
				}
			}
			txn.AddAttribute("http.status_code", status)

			return err
		}
	}
}
