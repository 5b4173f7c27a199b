// Package errors provides standardized error handling for the HTTP API.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller errors
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_ERROR"
	ErrCodeBadRequest             ErrorCode = "BAD_REQUEST"
	ErrCodeThemeParametersMissing ErrorCode = "THEME_PARAMETERS_MISSING"
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"

	// Upstream (completion provider) errors
	ErrCodeCompletionTimeout      ErrorCode = "COMPLETION_TIMEOUT"
	ErrCodeCompletionHTTPError    ErrorCode = "COMPLETION_HTTP_ERROR"
	ErrCodeCompletionNetworkError ErrorCode = "COMPLETION_NETWORK_ERROR"
	ErrCodeNormalizationFailed    ErrorCode = "NORMALIZATION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// FieldError describes a single request field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Fields    []FieldError           `json:"errors,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Converter is implemented by domain errors that know their API classification.
type Converter interface {
	AsStandardError() *StandardError
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError reports a request body that failed schema validation.
func NewValidationError(fields []FieldError) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

// NewBadRequestError reports a body that is not parseable at all.
func NewBadRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBadRequest,
		Message:   "Malformed request body",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewThemeParametersMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeThemeParametersMissing,
		Message:   "theme_parameters are required when theme is \"Yes\"",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Route not found",
		Details:   path,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompletionTimeoutError creates a retryable upstream timeout error.
func NewCompletionTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompletionTimeout,
		Message:   "Completion provider timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompletionHTTPError carries the provider's status code in metadata.
func NewCompletionHTTPError(status int, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompletionHTTPError,
		Message:   fmt.Sprintf("Completion provider returned status %d", status),
		Details:   details,
		Retryable: status == http.StatusTooManyRequests || status >= 500,
		Metadata:  map[string]interface{}{"upstream_status": status},
		Timestamp: time.Now().UTC(),
	}
}

func NewCompletionNetworkError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompletionNetworkError,
		Message:   "Completion provider unreachable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewNormalizationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNormalizationFailed,
		Message:   "Model output could not be normalized",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification
// ==========================

var httpStatusByCode = map[ErrorCode]int{
	ErrCodeValidationFailed:       http.StatusUnprocessableEntity,
	ErrCodeBadRequest:             http.StatusBadRequest,
	ErrCodeThemeParametersMissing: http.StatusUnprocessableEntity,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeCompletionTimeout:      http.StatusGatewayTimeout,
	ErrCodeCompletionHTTPError:    http.StatusBadGateway,
	ErrCodeCompletionNetworkError: http.StatusBadGateway,
	ErrCodeNormalizationFailed:    http.StatusBadGateway,
	ErrCodeInternal:               http.StatusInternalServerError,
}

// HTTPStatus maps an error code to the response status.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetErrorCategory groups codes for metrics and logs.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeBadRequest, ErrCodeThemeParametersMissing, ErrCodeNotFound:
		return "CLIENT"
	case ErrCodeCompletionTimeout, ErrCodeCompletionHTTPError, ErrCodeCompletionNetworkError, ErrCodeNormalizationFailed:
		return "UPSTREAM"
	default:
		return "INTERNAL"
	}
}

// Normalize converts any error into a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var conv Converter
	if stderrors.As(err, &conv) {
		if converted := conv.AsStandardError(); converted != nil {
			return converted
		}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewCompletionTimeoutError(err.Error())
	}

	return NewInternalError(err)
}
