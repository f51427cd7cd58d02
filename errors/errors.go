package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/NomadCrew/nomad-crew-planner/logger"
)

type ErrorType string

const (
	ValidationError ErrorType = "VALIDATION_ERROR"
	TimeoutError    ErrorType = "TIMEOUT_ERROR"
	ServiceError    ErrorType = "SERVICE_ERROR"
	ParseError      ErrorType = "PARSE_ERROR"
	NotFoundError   ErrorType = "NOT_FOUND"
	ConflictError   ErrorType = "CONFLICT"
	DatabaseError   ErrorType = "DATABASE_ERROR"
	ServerError     ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying error so errors.Is works through AppError.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status set on the error, falling back to the
// default for its type.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors
func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Timeout reports that a bounded call to an external service exceeded its
// deadline. Callers can offer a retry.
func Timeout(service string, err error) *AppError {
	return &AppError{
		Type:       TimeoutError,
		Message:    fmt.Sprintf("%s request timed out", service),
		Detail:     "Request timed out. Please check your connection.",
		HTTPStatus: http.StatusGatewayTimeout,
		Raw:        err,
	}
}

// ServiceFailure reports a transport failure or a non-2xx answer from an
// external service.
func ServiceFailure(service string, status int, detail string) *AppError {
	msg := fmt.Sprintf("%s request failed", service)
	if status > 0 {
		msg = fmt.Sprintf("%s request failed with status %d", service, status)
	}
	return &AppError{
		Type:       ServiceError,
		Message:    msg,
		Detail:     detail,
		HTTPStatus: http.StatusBadGateway,
	}
}

// ParseFailed reports a response that could not be decoded into the
// expected shape.
func ParseFailed(service string, err error) *AppError {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &AppError{
		Type:       ParseError,
		Message:    fmt.Sprintf("could not read %s response", service),
		Detail:     detail,
		HTTPStatus: http.StatusUnprocessableEntity,
		Raw:        err,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// IsType reports whether err is, or wraps, an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case TimeoutError:
		return http.StatusGatewayTimeout
	case ServiceError:
		return http.StatusBadGateway
	case ParseError:
		return http.StatusUnprocessableEntity
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
