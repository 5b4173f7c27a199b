package completion

import (
	"errors"
	"fmt"

	apperrors "survey-intelligence/internal/common/errors"
)

var (
	ErrCompletionTimeout = errors.New("COMPLETION_TIMEOUT")
	ErrCompletionStatus  = errors.New("COMPLETION_HTTP_ERROR")
	ErrCompletionNetwork = errors.New("COMPLETION_NETWORK_ERROR")
)

// ErrorKind tags why a completion call failed.
type ErrorKind int

const (
	KindTimeout ErrorKind = iota + 1
	KindHTTPStatus
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// CompletionError is the single failure type returned by Client.Complete.
// StatusCode is set only for KindHTTPStatus.
type CompletionError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *CompletionError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("completion failed: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completion failed (%s): %s", e.Kind, e.Message)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind.
func (e *CompletionError) Is(target error) bool {
	switch target {
	case ErrCompletionTimeout:
		return e.Kind == KindTimeout
	case ErrCompletionStatus:
		return e.Kind == KindHTTPStatus
	case ErrCompletionNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

func (e *CompletionError) AsStandardError() *apperrors.StandardError {
	switch e.Kind {
	case KindTimeout:
		return apperrors.NewCompletionTimeoutError(e.Message)
	case KindHTTPStatus:
		return apperrors.NewCompletionHTTPError(e.StatusCode, e.Message)
	default:
		return apperrors.NewCompletionNetworkError(e.Message)
	}
}
