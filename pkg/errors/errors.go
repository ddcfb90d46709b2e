package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrIO            ErrorCode = "IO"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// Descriptor errors
	ErrMissingDescriptor    ErrorCode = "MISSING_DESCRIPTOR"
	ErrMalformed            ErrorCode = "MALFORMED"
	ErrNotATable            ErrorCode = "NOT_A_TABLE"
	ErrInvalidValue         ErrorCode = "INVALID_VALUE"
	ErrInvalidPattern       ErrorCode = "INVALID_PATTERN"
	ErrUnsupportedDirective ErrorCode = "UNSUPPORTED_DIRECTIVE"
	ErrMissingCommand       ErrorCode = "MISSING_COMMAND"

	// Execution errors
	ErrEmptyCommand ErrorCode = "EMPTY_COMMAND"
	ErrSpawn        ErrorCode = "SPAWN"
	ErrTimeout      ErrorCode = "TIMEOUT"
	ErrCanceled     ErrorCode = "CANCELED"

	// Watch errors
	ErrWatch ErrorCode = "WATCH"

	// Project list errors
	ErrProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
)

// PrownError represents a structured error with code and details
type PrownError struct {
	Code    ErrorCode
	Message string
	// Hint is the remediation shown to the user after the message.
	Hint    string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PrownError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PrownError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PrownError) Is(target error) bool {
	var targetErr *PrownError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PrownError with the given code and message
func New(code ErrorCode, message string) *PrownError {
	return &PrownError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PrownError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PrownError {
	return &PrownError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PrownError
func Wrap(err error, code ErrorCode, message string) *PrownError {
	if err == nil {
		return nil
	}
	return &PrownError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PrownError {
	if err == nil {
		return nil
	}
	return &PrownError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PrownError) WithDetail(key string, value interface{}) *PrownError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHint sets the remediation text
func (e *PrownError) WithHint(format string, args ...interface{}) *PrownError {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var prownErr *PrownError
	if errors.As(err, &prownErr) {
		return prownErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PrownError
func GetErrorCode(err error) ErrorCode {
	var prownErr *PrownError
	if errors.As(err, &prownErr) {
		return prownErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PrownError
func GetErrorDetails(err error) map[string]interface{} {
	var prownErr *PrownError
	if errors.As(err, &prownErr) {
		return prownErr.Details
	}
	return nil
}

// UserMessage renders err as the single line shown on the terminal.
// The code prefix is dropped; the hint of the outermost PrownError is appended.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var prownErr *PrownError
	if !errors.As(err, &prownErr) {
		return err.Error()
	}
	msg := prownErr.Message
	if prownErr.Wrapped != nil {
		msg = fmt.Sprintf("%s: %s", msg, UserMessage(prownErr.Wrapped))
	}
	if prownErr.Hint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, prownErr.Hint)
	}
	return msg
}
