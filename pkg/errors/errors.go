// Package errors provides structured error handling for the application
// with a small taxonomy focused on the provider boundary and local storage.
package errors

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Provider boundary errors
	CodeCredentialMissing ErrorCode = "CREDENTIAL_MISSING"
	CodeCredentialInvalid ErrorCode = "CREDENTIAL_INVALID"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeAPIError          ErrorCode = "API_ERROR"
	CodeContentMissing    ErrorCode = "CONTENT_MISSING"
	CodeParseFailure      ErrorCode = "PARSE_FAILURE"

	// Server errors (5xx)
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeStorageError ErrorCode = "STORAGE_ERROR"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeCredentialMissing, CodeCredentialInvalid:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeAPIError, CodeContentMissing, CodeParseFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// Predefined error constructors for common scenarios

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewStorageError creates a storage error
func NewStorageError(operation string, cause error) *AppError {
	return NewAppError(
		CodeStorageError,
		"Storage operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// Provider boundary errors. Messages are the user-facing strings shown
// inline by the presentation layer, so they stay in the product language.

// NewCredentialMissingError signals that no API credential is configured
func NewCredentialMissingError() *AppError {
	return NewAppError(
		CodeCredentialMissing,
		"APIキーが設定されていません",
		"設定画面からAPIキーを登録してください",
	)
}

// NewCredentialInvalidError signals an HTTP 401 from the provider
func NewCredentialInvalidError() *AppError {
	return NewAppError(
		CodeCredentialInvalid,
		"APIキーが正しくありません。設定を確認してください",
		"",
	)
}

// NewRateLimitedError signals an HTTP 429 from the provider
func NewRateLimitedError() *AppError {
	return NewAppError(
		CodeRateLimited,
		"リクエスト制限中です。30秒ほど待ってからリトライしてください",
		"",
	)
}

// NewAPIError signals any other non-2xx provider status
func NewAPIError(status int) *AppError {
	return NewAppError(
		CodeAPIError,
		fmt.Sprintf("APIエラーが発生しました（%d）", status),
		"",
	).WithMetadata("status", status)
}

// NewContentMissingError signals a 2xx response with no message content
func NewContentMissingError() *AppError {
	return NewAppError(
		CodeContentMissing,
		"レスポンスにテキストが含まれていません",
		"",
	)
}

// NewParseFailureError signals malformed JSON after unwrap attempts
func NewParseFailureError(what string, cause error) *AppError {
	return NewAppError(
		CodeParseFailure,
		fmt.Sprintf("%sのJSON解析に失敗しました", what),
		"",
	).WithCause(cause)
}

// Utility functions

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
