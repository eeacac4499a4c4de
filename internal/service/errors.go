package service

import (
	"context"
	"errors"
	"net/http"
)

// Stable failure categories surfaced to clients. Handlers never leak
// raw provider or database error text; they wrap causes with these
// sentinels and let Classify pick the status and user message.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrQuotaExceeded         = errors.New("daily usage limit reached")
	ErrInvalidInput          = errors.New("invalid input")
	ErrNoIngredientsDetected = errors.New("no ingredients detected")
	ErrProviderTimeout       = errors.New("provider timeout")
	ErrProviderNetwork       = errors.New("provider network error")
	ErrSchemaValidation      = errors.New("schema validation failed")
	ErrStorage               = errors.New("storage error")
	ErrNotFound              = errors.New("not found")
)

// ClassifiedError is the result of mapping a component failure to a
// user-facing category.
type ClassifiedError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Classify maps an error from any component to a stable category. The
// returned message is safe to show to the client; internal detail stays
// in the wrapped cause for server-side logging.
func Classify(err error) ClassifiedError {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return ClassifiedError{http.StatusUnauthorized, "unauthorized", "unauthorized"}
	case errors.Is(err, ErrQuotaExceeded):
		return ClassifiedError{http.StatusTooManyRequests, "quota_exceeded",
			"You have reached your daily limit. Please try again tomorrow."}
	case errors.Is(err, ErrInvalidInput):
		return ClassifiedError{http.StatusBadRequest, "invalid_input", err.Error()}
	case errors.Is(err, ErrNoIngredientsDetected):
		return ClassifiedError{http.StatusUnprocessableEntity, "no_ingredients_detected",
			"No ingredients were detected. Please rephrase and try again."}
	case errors.Is(err, ErrProviderTimeout), errors.Is(err, context.DeadlineExceeded):
		return ClassifiedError{http.StatusGatewayTimeout, "provider_timeout",
			"The request took too long to process. Please try again."}
	case errors.Is(err, ErrProviderNetwork):
		return ClassifiedError{http.StatusBadGateway, "provider_error",
			"We could not reach the assistant. Please try again."}
	case errors.Is(err, ErrSchemaValidation):
		return ClassifiedError{http.StatusInternalServerError, "processing_failed",
			"Processing failed. Please try again."}
	case errors.Is(err, ErrNotFound):
		return ClassifiedError{http.StatusNotFound, "not_found", "not found"}
	case errors.Is(err, ErrStorage):
		return ClassifiedError{http.StatusInternalServerError, "storage_error",
			"Something went wrong. Please try again."}
	default:
		return ClassifiedError{http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again."}
	}
}
