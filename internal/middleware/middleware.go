// Package middleware holds the echo middleware of the API: request ids,
// request-scoped logging, Clerk authentication, New Relic tracing, rate
// limiting and the global error handler.
package middleware
