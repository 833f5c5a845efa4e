// errors.go - Structured error handling for API responses
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Client-facing messages for the upload endpoint.
const (
	MsgNoFile            = "No file provided"
	MsgInvalidFormat     = "Invalid file format. Only PDF and Word (docx) files are allowed."
	MsgExtractionFailed  = "Failed to extract text from the CV"
	MsgSaveFailed        = "Failed to save the uploaded file"
	MsgUpstreamFailed    = "Job search service is unavailable"
	MsgHistoryDisabled   = "Search history is disabled"
	MsgUnexpectedFailure = "An unexpected error occurred"
)

// APIError represents a structured API error response. Only Message (and
// Details, when set) reach the client, as {"error": ..., "details": ...}.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
		cause:   cause,
	}
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
		cause:   cause,
	}
}

// NewBadGatewayError creates a 502 Bad Gateway error
func NewBadGatewayError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusBadGateway,
		Code:    "UPSTREAM_ERROR",
		Message: message,
		cause:   cause,
	}
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// NewErrorHandler returns an echo.HTTPErrorHandler that renders errors as
// {"error": message}. Causes are attached as details only when showDetails
// is set.
// Usage: e.HTTPErrorHandler = api.NewErrorHandler(logger, false)
func NewErrorHandler(logger *slog.Logger, showDetails bool) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError

		switch e := err.(type) {
		case *APIError:
			copied := *e
			apiErr = &copied
		case *echo.HTTPError:
			apiErr = &APIError{
				Status:  e.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", e.Message),
				cause:   e.Internal,
			}
		default:
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "UNKNOWN_ERROR",
				Message: MsgUnexpectedFailure,
				cause:   err,
			}
		}

		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method, "path", c.Request().URL.Path,
				"status", apiErr.Status, "code", apiErr.Code, "error", apiErr.cause)
		}
		if showDetails && apiErr.cause != nil {
			apiErr.Details = apiErr.cause.Error()
		}

		if err := c.JSON(apiErr.Status, apiErr); err != nil {
			logger.Warn("failed to write error response", "error", err)
		}
	}
}
