package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/errs"
	"github.com/deppfellow/bctw-api/internal/server"
	"github.com/deppfellow/bctw-api/internal/sqlerr"
)

type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		ExposeHeaders: []string{RequestIDHeader},
	})
}

// BodyLimit caps request bodies; bulk upserts are the largest payloads.
func (global *GlobalMiddlewares) BodyLimit(limit string) echo.MiddlewareFunc {
	return middleware.BodyLimit(limit)
}

// RequestLogger writes one "request" line per call. The level follows the
// status the error handler will send, not the status echo has recorded so far.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:          true,
		LogStatus:       true,
		LogError:        true,
		LogLatency:      true,
		LogMethod:       true,
		LogResponseSize: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			status := v.Status
			if v.Error != nil {
				status = toHTTPError(v.Error).Status
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				e = logger.Error().Err(v.Error)
			case status >= http.StatusBadRequest:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			for _, name := range c.ParamNames() {
				e = e.Str("param."+name, c.Param(name))
			}

			e.
				Dur("latency", v.Latency).
				Int("status", status).
				Int64("bytes_out", v.ResponseSize).
				Str("uri", v.URI).
				Str("user_agent", c.Request().UserAgent()).
				Msg("request")

			return nil
		},
	})
}

// Recover turns a panic into a 500 and logs it with the request's logger.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().
				Err(err).
				Str("stack", string(stack)).
				Msg("recovered from panic")
			return err
		},
	})
}

// Secure sets the headers of a JSON-only API.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000,
	})
}

// toHTTPError classifies any error a handler can return. Database and query
// building errors go through sqlerr.
func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusNotFound {
			return errs.NewNotFoundError("Route not found", false, nil)
		}
		message := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else if echoErr.Message != nil {
			message = fmt.Sprint(echoErr.Message)
		}
		return &errs.HTTPError{
			Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
			Message: message,
			Status:  echoErr.Code,
		}
	}

	if errors.As(sqlerr.HandleError(err), &httpErr) {
		return httpErr
	}
	return errs.NewInternalServerError()
}

// GlobalErrorHandler writes the JSON error body for every failed request. The
// original error is always logged; only the classified one reaches the client.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	logger := GetLogger(c)
	event := logger.Warn()
	if httpErr.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, httpErr)
}
