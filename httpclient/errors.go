package httpclient

import "fmt"

// ErrorType identifies the category of a client error.
type ErrorType string

const (
	// EncodingConflict marks requests that supplied both an explicit body
	// and field data for a body-bearing method. Non-retryable.
	EncodingConflict ErrorType = "encoding_conflict"
	// RetryExhausted marks redirect chains that exceeded their budget while
	// RaiseOnRedirect was set.
	RetryExhausted ErrorType = "retry_exhausted"
	// TransportFailure wraps opaque dispatch failures from the transport
	// collaborator. Never reinterpreted as a redirect or retry event.
	TransportFailure ErrorType = "transport_failure"
)

// ClientError is the common interface for all typed errors produced by this
// package.
type ClientError interface {
	error
	Type() ErrorType
}

// EncodingConflictError reports ambiguous encoding intent.
type EncodingConflictError struct {
	Message string
}

// NewEncodingConflictError creates an EncodingConflictError.
func NewEncodingConflictError(message string) *EncodingConflictError {
	return &EncodingConflictError{Message: message}
}

func (e *EncodingConflictError) Error() string {
	return fmt.Sprintf("encoding conflict: %s", e.Message)
}

// Type returns the error type for categorization.
func (e *EncodingConflictError) Type() ErrorType { return EncodingConflict }

// RetryExhaustedError reports a redirect chain that exceeded its budget.
// The controller releases the in-flight response before returning it.
type RetryExhaustedError struct {
	URL      string
	Attempts int
}

// NewRetryExhaustedError creates a RetryExhaustedError.
func NewRetryExhaustedError(url string, attempts int) *RetryExhaustedError {
	return &RetryExhaustedError{URL: url, Attempts: attempts}
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted: max redirects exceeded after %d attempts for %s", e.Attempts, e.URL)
}

// Type returns the error type for categorization.
func (e *RetryExhaustedError) Type() ErrorType { return RetryExhausted }

// TransportError wraps a failure reported by the transport collaborator.
type TransportError struct {
	Message string
	Err     error
}

// NewTransportError creates a TransportError wrapping the underlying cause.
func NewTransportError(message string, err error) *TransportError {
	return &TransportError{Message: message, Err: err}
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transport failure: %s", e.Message)
}

// Type returns the error type for categorization.
func (e *TransportError) Type() ErrorType { return TransportFailure }

// Unwrap exposes the underlying transport error.
func (e *TransportError) Unwrap() error { return e.Err }
