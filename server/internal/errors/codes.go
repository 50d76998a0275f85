package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error type for booking operations.
type ErrorCode string

const (
	// ErrCodeParseFailed indicates nothing usable could be parsed from the sentence.
	ErrCodeParseFailed ErrorCode = "PARSE_FAILED"
	// ErrCodeLLMUnavailable indicates the external collaborator is not reachable.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeLLMTimeout indicates the external collaborator timed out.
	ErrCodeLLMTimeout ErrorCode = "LLM_TIMEOUT"
	// ErrCodeLLMInvalidResponse indicates the collaborator reply was unusable.
	ErrCodeLLMInvalidResponse ErrorCode = "LLM_INVALID_RESPONSE"
	// ErrCodeValidationFailed indicates a required field is missing or confidence is too low.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodeBookingConflict indicates the requested slot overlaps a confirmed booking.
	ErrCodeBookingConflict ErrorCode = "BOOKING_CONFLICT"
	// ErrCodeBookingNotFound indicates the booking does not exist.
	ErrCodeBookingNotFound ErrorCode = "BOOKING_NOT_FOUND"
	// ErrCodeStoreUnavailable indicates the persistence layer failed.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// BookingError represents a structured error for booking operations.
type BookingError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *BookingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BookingError) Unwrap() error {
	return e.Cause
}

// Is matches any BookingError with the same code.
func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

// WithContext adds context to the error.
func (e *BookingError) WithContext(key string, value any) *BookingError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsRetryable reports whether the caller may retry the same request unchanged.
// Conflicts and validation failures are final.
func (e *BookingError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeLLMUnavailable, ErrCodeLLMTimeout, ErrCodeStoreUnavailable:
		return true
	default:
		return false
	}
}

// New creates a BookingError.
func New(code ErrorCode, msg string) *BookingError {
	return &BookingError{Code: code, Message: msg}
}

// Wrap wraps an existing error with a code.
func Wrap(cause error, code ErrorCode, msg string) *BookingError {
	return &BookingError{Code: code, Message: msg, Cause: cause}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *BookingError {
	return New(ErrCodeInvalidArgument, msg)
}

// ValidationFailed creates a validation error naming the missing fields.
func ValidationFailed(missing []string) *BookingError {
	return New(ErrCodeValidationFailed, "cannot proceed with booking").WithContext("missing", missing)
}

// StoreUnavailable wraps a persistence failure.
func StoreUnavailable(cause error) *BookingError {
	return Wrap(cause, ErrCodeStoreUnavailable, "booking store unavailable")
}

// IsCode checks if an error chain carries a BookingError with the code.
func IsCode(err error, code ErrorCode) bool {
	var be *BookingError
	return stderrors.As(err, &be) && be.Code == code
}

// CodeOf extracts the error code from any error, or def when there is none.
func CodeOf(err error, def ErrorCode) ErrorCode {
	var be *BookingError
	if stderrors.As(err, &be) {
		return be.Code
	}
	return def
}
