// Package enginerr implements the engine's error taxonomy: a small Code
// enum plus a typed Error carrying an optional wrapped cause, the three
// classes the engine boundary needs to distinguish.
package enginerr

import (
	"errors"
	"fmt"
)

// Code classifies an engine error for the caller sitting in front of
// engine.Engine (HTTP/RPC layer, out of scope for this module).
type Code string

const (
	// NotFound: unknown user when inline responses are absent, or a
	// referenced resource missing at startup.
	NotFound Code = "not_found"
	// BadRequest: structurally invalid input, such as an ambiguous blueprint, an
	// empty session at result time, an active topic with no candidates.
	BadRequest Code = "bad_request"
	// Internal: an unanticipated failure in a downstream collaborator.
	Internal Code = "internal"
)

// Error is the engine's error type. Unwrap is supported so errors.Is and
// errors.As work against both Code and any wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Code: NotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequestf builds a BadRequest error.
func BadRequestf(format string, args ...interface{}) *Error {
	return &Error{Code: BadRequest, Message: fmt.Sprintf(format, args...)}
}

// Internalf wraps err as an Internal error without leaking its message
// beyond what the caller explicitly supplies.
func Internalf(err error, format string, args ...interface{}) *Error {
	return &Error{Code: Internal, Message: fmt.Sprintf(format, args...), Cause: err}
}

// CodeOf extracts the Code of err if it is (or wraps) an *Error, otherwise
// returns Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}
