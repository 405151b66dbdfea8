// Package errors provides the structured error type shared by the data API
// and its clients.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode is a stable, machine readable error identifier.
type ErrorCode string

// Authorization
const (
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeAccessDenied ErrorCode = "ACCESS_DENIED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
)

// Request validation
const (
	ErrCodeInvalidRequest          ErrorCode = "INVALID_REQUEST"
	ErrCodeTitleRequired           ErrorCode = "TITLE_REQUIRED"
	ErrCodeSectionNameRequired     ErrorCode = "SECTION_NAME_REQUIRED"
	ErrCodeInvalidStatus           ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
)

// Resources and infrastructure
const (
	ErrCodeApplicationNotFound    ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeDatabaseError          ErrorCode = "DATABASE_ERROR"
	ErrCodeDataAPIError           ErrorCode = "DATA_API_ERROR"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError is returned when no valid identity accompanies a request.
func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Unauthorized", details, false)
}

// NewAccessDeniedError is returned for authenticated users outside the allowlist.
func NewAccessDeniedError(email string) *StandardError {
	return newError(ErrCodeAccessDenied, "Access denied", fmt.Sprintf("email: %s", email), false)
}

func NewRateLimitedError(key string) *StandardError {
	return newError(ErrCodeRateLimited, "Too many requests", fmt.Sprintf("key: %s", key), true)
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request data", details, false)
}

func NewTitleRequiredError() *StandardError {
	return newError(ErrCodeTitleRequired, "Title is required", "", false)
}

func NewSectionNameRequiredError() *StandardError {
	return newError(ErrCodeSectionNameRequired, "Section name is required", "", false)
}

func NewInvalidStatusError(status string) *StandardError {
	return newError(ErrCodeInvalidStatus, "Invalid status", fmt.Sprintf("status: %s", status), false)
}

// NewInvalidStatusTransitionError rejects a backward lifecycle move.
func NewInvalidStatusTransitionError(from, to string) *StandardError {
	return newError(ErrCodeInvalidStatusTransition, "Invalid status transition",
		fmt.Sprintf("from: %s, to: %s", from, to), false)
}

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "Application not found",
		fmt.Sprintf("applicationId: %s", applicationID), false)
}

// NewDatabaseError wraps a storage failure behind a caller supplied generic message.
func NewDatabaseError(message string, err error) *StandardError {
	return newError(ErrCodeDatabaseError, message, err.Error(), true)
}

// NewDataAPIError describes a failed call to the remote data API.
func NewDataAPIError(status int, message string) *StandardError {
	e := newError(ErrCodeDataAPIError, message, fmt.Sprintf("status: %d", status), status >= 500)
	return e.WithMetadata("status", status)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeInternal, "Internal server error", details, false)
}

// ==========================
// 3. HTTP Mapping
// ==========================

var httpStatusByCode = map[ErrorCode]int{
	ErrCodeUnauthorized:            http.StatusUnauthorized,
	ErrCodeAccessDenied:            http.StatusForbidden,
	ErrCodeRateLimited:             http.StatusTooManyRequests,
	ErrCodeInvalidRequest:          http.StatusBadRequest,
	ErrCodeTitleRequired:           http.StatusBadRequest,
	ErrCodeSectionNameRequired:     http.StatusBadRequest,
	ErrCodeInvalidStatus:           http.StatusBadRequest,
	ErrCodeInvalidStatusTransition: http.StatusConflict,
	ErrCodeApplicationNotFound:     http.StatusNotFound,
	ErrCodeDatabaseError:           http.StatusInternalServerError,
	ErrCodeDataAPIError:            http.StatusBadGateway,
	ErrCodeNotificationSendFailed:  http.StatusBadGateway,
	ErrCodeInternal:                http.StatusInternalServerError,
}

// HTTPStatus returns the response status for a code, 500 when unknown.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode reports whether a client may retry after this code.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeRateLimited, ErrCodeDatabaseError, ErrCodeNotificationSendFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeUnauthorized || code == ErrCodeAccessDenied || code == ErrCodeRateLimited:
		return "AUTH"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "DATA_API"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "REQUIRED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
