// Package api exposes the flashcard services over HTTP.
//
// Handlers decode and validate JSON requests, take the actor from the
// authenticated request context, call the application services, and map
// their errors to status codes and client-safe messages. Subpackage
// middleware authenticates requests and attaches trace ids; subpackage
// shared holds the response helpers both use.
package api
