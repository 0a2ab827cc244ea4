// Package response writes JSON bodies for plain net/http handlers that sit
// outside the huma API (router fallbacks and middleware), using the same
// error shape as the API.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	domainerrors "github.com/connectapp/connect-server/internal/errors"
)

// ErrorBody is the error payload shared with huma handlers.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	JSON(w, status, ErrorBody{Code: string(code), Message: message}, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, domainerrors.CodeValidation, "method not allowed", logger)
}

// HandleError writes an appropriate response for err.
// Domain errors keep their code and details; anything else becomes a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		JSON(w, domainErr.HTTPStatus(), ErrorBody{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, domainerrors.CodeInternal, "internal server error", logger)
}
