// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Provider errors
	ErrFetchFailed  = &Error{Code: "FETCH_FAILED", Message: "provider fetch failed"}
	ErrFetchTimeout = &Error{Code: "FETCH_TIMEOUT", Message: "provider fetch timeout"}

	// Criteria errors
	ErrInvalidSort     = &Error{Code: "INVALID_SORT", Message: "invalid sort option"}
	ErrInvalidCriteria = &Error{Code: "INVALID_CRITERIA", Message: "invalid filter criteria"}
	ErrInvalidRequest  = &Error{Code: "INVALID_REQUEST", Message: "invalid request"}

	// Price feed errors
	ErrPriceUnavailable = &Error{Code: "PRICE_UNAVAILABLE", Message: "live price unavailable"}

	// Settings errors
	ErrSettingsFailed = &Error{Code: "SETTINGS_FAILED", Message: "settings persistence failed"}

	// Alert errors
	ErrNotifierFailed = &Error{Code: "NOTIFIER_FAILED", Message: "notifier failed"}

	// Auth errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid api key"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
