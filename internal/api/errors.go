package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stefanvasilev2002/intellicard/internal/api/shared"
	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/domain/srs"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stefanvasilev2002/intellicard/internal/service"
	"github.com/stefanvasilev2002/intellicard/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Unknown
// errors map to 500 so internal failure modes are never exposed.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, generation.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, generation.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType

	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrMismatchedCollection),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict

	case errors.Is(err, service.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// clientMessages lists errors whose meaning is safe to show to clients, in
// match order. More specific errors come before the sentinels they wrap.
var clientMessages = []struct {
	err     error
	message string
}{
	{auth.ErrExpiredToken, "Token expired"},
	{auth.ErrInvalidToken, "Invalid token"},
	{auth.ErrTokenNotYetValid, "Invalid token"},
	{auth.ErrMissingToken, "Authorization header required"},
	{auth.ErrExpiredRefreshToken, "Invalid refresh token"},
	{auth.ErrInvalidRefreshToken, "Invalid refresh token"},
	{auth.ErrWrongTokenType, "Invalid refresh token"},
	{service.ErrInvalidCredentials, "Invalid username or password"},

	{service.ErrUnauthorized, "You do not have access to this resource"},

	{service.ErrCollectionNotFound, "Card set not found"},
	{service.ErrCardNotFound, "Card not found"},
	{service.ErrRequestNotFound, "Access request not found"},
	{service.ErrUserNotFound, "User not found"},

	{service.ErrMismatchedCollection, "Access request belongs to a different card set"},
	{service.ErrUsernameTaken, "Username already taken"},
	{domain.ErrAccessRequestNotPending, "Access request has already been answered"},

	{generation.ErrDocumentTooLarge, "Document is too large"},
	{generation.ErrUnsupportedFormat, "Unsupported document format"},
	{generation.ErrDocumentTooShort, "Document does not contain enough text"},
	{generation.ErrInvalidCount, "Invalid question count"},
	{generation.ErrInvalidLevel, "Invalid difficulty level"},
	{generation.ErrContentBlocked, "Document content was rejected by the card generator"},
	{generation.ErrNoUsableCards, "No usable cards could be generated from the document"},
	{service.ErrGenerationUnavailable, "Card generation is temporarily unavailable"},

	{srs.ErrInvalidDifficulty, "Difficulty must be between 1 and 5"},
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	for _, cm := range clientMessages {
		if errors.Is(err, cm.err) {
			return cm.message
		}
	}

	// Domain validation errors carry their own user-facing text.
	if errors.Is(err, domain.ErrValidation) {
		if msg := validationMessage(err); msg != "" {
			return msg
		}
		return "Validation error"
	}
	if errors.Is(err, service.ErrInvalidArgument) {
		return "Invalid request"
	}

	return "An unexpected error occurred"
}

// validationMessage extracts the text after the "validation failed: " prefix
// of a domain validation error.
func validationMessage(err error) string {
	prefix := domain.ErrValidation.Error() + ": "
	msg := err.Error()
	idx := strings.LastIndex(msg, prefix)
	if idx < 0 {
		return ""
	}
	msg = msg[idx+len(prefix):]
	if msg == "" {
		return ""
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// SanitizeValidationError converts a request validation failure into a
// short message naming the first invalid field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too short or too small"
	case "max", "lte":
		return "too long or too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. fallback replaces the generic
// message for errors that map to 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden || status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
