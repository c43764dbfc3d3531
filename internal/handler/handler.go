// Package handler is the HTTP layer behind the router.
//
// Each handler method receives a bound and validated request together with
// the echo context, reads the caller's identity from the context and calls
// the service layer. Errors are returned unchanged; the global error handler
// turns them into responses.
package handler
