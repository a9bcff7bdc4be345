package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies backend failures.
type ErrorKind string

const (
	// KindUnavailable covers network, auth, quota and other backend call failures.
	KindUnavailable ErrorKind = "backend_unavailable"
	// KindTimeout means the call exceeded its deadline.
	KindTimeout ErrorKind = "backend_timeout"
	// KindEmptyResponse means the backend answered without any text.
	KindEmptyResponse ErrorKind = "empty_backend_response"
)

// BackendError is returned by every Client implementation.
type BackendError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a BackendError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Kind == kind
}

// classifyCallError maps a failed backend call onto an error kind. callCtx is the
// context the call ran under, including the adapter's own timeout. A call the
// caller cancelled is not a backend failure and comes back as a plain error
// wrapping context.Canceled.
func classifyCallError(callCtx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &BackendError{Kind: KindTimeout, Message: "completion deadline exceeded", Cause: err}
	}
	if errors.Is(callCtx.Err(), context.Canceled) {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("completion cancelled: %w", err)
		}
		return fmt.Errorf("completion cancelled: %w: %w", context.Canceled, err)
	}
	return &BackendError{Kind: KindUnavailable, Message: "completion request failed", Cause: err}
}

func emptyResponse(detail string) *BackendError {
	return &BackendError{Kind: KindEmptyResponse, Message: detail}
}
