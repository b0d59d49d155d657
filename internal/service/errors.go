package service

import (
	"errors"
	"fmt"

	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError with the failing operation
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to HTTP status codes in one place
var (
	// ErrUnauthorized indicates the actor lacks the access level the
	// operation requires. API layer maps this to HTTP 403 and never to 404.
	ErrUnauthorized = domain.ErrUnauthorized

	// ErrInvalidArgument indicates malformed input, such as a review
	// difficulty out of range or an unusable document.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCollectionNotFound indicates the collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCardNotFound indicates the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrRequestNotFound indicates the access request does not exist.
	ErrRequestNotFound = errors.New("access request not found")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrMismatchedCollection indicates an access request was addressed
	// through a collection it does not belong to.
	// API layer should map this to HTTP 409 Conflict.
	ErrMismatchedCollection = errors.New("access request belongs to a different collection")

	// ErrUsernameTaken indicates registration with a username already in use.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials indicates a failed login. It deliberately does not
	// say whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrGenerationUnavailable indicates no card generator is configured or
	// the upstream model could not be reached.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrGenerationUnavailable = errors.New("card generation unavailable")
)

// ServiceError is a custom error type for unexpected service failures.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// translateStoreError maps store-level sentinels onto service sentinels and
// wraps anything unexpected in a ServiceError. Domain validation errors are
// reported as invalid arguments while keeping the original in the chain.
func translateStoreError(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrCollectionNotFound):
		return ErrCollectionNotFound
	case errors.Is(err, store.ErrCardNotFound):
		return ErrCardNotFound
	case errors.Is(err, store.ErrAccessRequestNotFound):
		return ErrRequestNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	default:
		return NewServiceError(operation, "store operation failed", err)
	}
}

// isServiceSentinel reports whether err is already one of the errors this
// package hands to callers unchanged.
func isServiceSentinel(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrCollectionNotFound) ||
		errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrMismatchedCollection) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrGenerationUnavailable) ||
		errors.Is(err, domain.ErrInvalidTransition)
}

// passOrWrap returns err unchanged when it is a service sentinel and
// translates it otherwise. Used on errors coming out of transactions.
func passOrWrap(operation string, err error) error {
	if err == nil || isServiceSentinel(err) {
		return err
	}
	return translateStoreError(operation, err)
}
