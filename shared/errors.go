package shared

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is the taxonomy carried across service boundaries. Services return
// plain AppError values; the HTTP layer unwraps them into status + body.
type AppError struct {
	StatusCode int         `json:"-"`
	Message    string      `json:"error"`
	Data       interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Data)
	}
	return e.Message
}

// GetAppError unwraps err to an AppError if one is in the chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewAppError(statusCode int, message string, data interface{}) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data}
}

func NewBadRequestError(data interface{}, message string) *AppError {
	return &AppError{StatusCode: fiber.StatusBadRequest, Message: message, Data: data}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusConflict, Message: message}
}

// NewStorageUnavailableError covers the session-fatal case where the local
// database cannot be opened at all.
func NewStorageUnavailableError(cause error) *AppError {
	return &AppError{
		StatusCode: fiber.StatusInternalServerError,
		Message:    "Local storage unavailable",
		Data:       causeDetail(cause),
	}
}

// ErrStoreNotInitialized is a programming error: a store operation ran before
// Initialize resolved.
var ErrStoreNotInitialized = &AppError{
	StatusCode: fiber.StatusInternalServerError,
	Message:    "Store not initialized",
}

func NewNetworkFailureError(cause error) *AppError {
	return &AppError{
		StatusCode: fiber.StatusBadGateway,
		Message:    "Upstream service unreachable",
		Data:       causeDetail(cause),
	}
}

// NewUpstreamError surfaces a non-2xx proxy reply verbatim.
func NewUpstreamError(statusCode int, message string, details interface{}) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: details}
}

func NewMalformedUpstreamError(detail string) *AppError {
	return &AppError{
		StatusCode: fiber.StatusBadGateway,
		Message:    "Upstream response missing required fields",
		Data:       detail,
	}
}

func NewConfigurationError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusInternalServerError, Message: message}
}

func causeDetail(cause error) interface{} {
	if cause == nil {
		return nil
	}
	return cause.Error()
}
