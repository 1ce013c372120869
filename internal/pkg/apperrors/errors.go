package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrRateLimited    ErrorType = "RATE_LIMITED"
	ErrDuplicate      ErrorType = "DUPLICATE_REQUEST"
	ErrTemplate       ErrorType = "TEMPLATE_ERROR"
	ErrEmailDelivery  ErrorType = "EMAIL_DELIVERY_FAILED"
	ErrLogsBackend    ErrorType = "LOGS_UNAVAILABLE"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NewEmailDelivery(msg string, cause error) *AppError {
	return New(ErrEmailDelivery, msg, cause)
}

func NewLogsBackend(cause error) *AppError {
	return New(ErrLogsBackend, "logging service unavailable", cause)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrDuplicate:
		return http.StatusConflict
	case ErrEmailDelivery:
		return http.StatusBadGateway
	case ErrLogsBackend:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrInvalidRequest:
		return "Check the request payload against the API docs."
	case ErrAuthFailed:
		return "Check the X-Service-Key header."
	case ErrRateLimited:
		return "Slow down and retry later."
	case ErrDuplicate:
		return "A request with this idempotency key is already in progress."
	case ErrEmailDelivery:
		return "Verify SMTP settings and recipient address, then retry."
	case ErrLogsBackend:
		return "Retry once the logging service is reachable."
	default:
		return ""
	}
}
