// Package domainerrors provides coded errors for the service layer.
//
// Services attach a Code to every error that crosses a layer boundary so
// transports can map failures to status codes without string matching, and
// tests can assert on failure class rather than message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and alerting.
type Code string

const (
	// CodeValidation marks bad or missing caller input. No side effects
	// were performed.
	CodeValidation Code = "validation"

	// CodeConflict marks a uniqueness collision (duplicate email, duplicate
	// identity, duplicate matric number), detected either by a pre-check or
	// by a store constraint at write time.
	CodeConflict Code = "conflict"

	// CodeConfiguration marks a catalog-data defect: the request referenced
	// an entity that exists but is not set up correctly. Reported separately
	// from validation so operators get alerted instead of callers blamed.
	CodeConfiguration Code = "configuration"

	// CodeUpstream marks a failure from an external collaborator (identity
	// service, matric allocator, database) that is not a conflict.
	CodeUpstream Code = "upstream"

	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"

	// CodeUnauthorized marks a missing or invalid credential.
	CodeUnauthorized Code = "unauthorized"

	// CodeInternal marks programming faults and anything unclassified.
	CodeInternal Code = "internal"
)

// Error is a coded error with an operator-facing message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message, preserving the cause chain.
// Wrapping a nil error returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability:
// dErrors.Is(err, dErrors.CodeConflict).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost coded error in err's chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// MessageOf returns the message of the outermost coded error, or a generic
// message for uncoded errors so internals never leak to callers.
func MessageOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Message
	}
	return "internal error"
}
