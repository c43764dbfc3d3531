// Package service contains the business logic.
//
// It sits between the handler and repository layers. Services receive
// validated requests together with the caller's identity, turn them into
// repository calls and trigger side effects such as notifications.
// Authorization is decided by the database from the identity.
package service
