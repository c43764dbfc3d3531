// Package errs defines the error shapes returned to API clients.
//
// Every failure leaving the HTTP layer is an *HTTPError: a stable
// machine-readable code, a message, the status, and optional field errors
// for rejected request payloads. Lower layers return their own error types
// (database, encoding, result shape) and sqlerr translates them into
// HTTPError at the edge.
package errs
