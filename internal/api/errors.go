package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/connectapp/connect-server/internal/errors"
	"github.com/connectapp/connect-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			// Store errors that escaped a service keep their status.
			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Code:    string(statusToCode(storeErr.HTTPCode())),
					Message: storeErr.Message,
				}
			}
		}

		// Request validation failures from huma carry their detail errors.
		var details []string
		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			for _, err := range errs {
				if err != nil {
					details = append(details, err.Error())
				}
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    string(statusToCode(status)),
			Message: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeAlreadyExists
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	case http.StatusServiceUnavailable:
		return domainerrors.CodeUnavailable
	default:
		return domainerrors.CodeInternal
	}
}
