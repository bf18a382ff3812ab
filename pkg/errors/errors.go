// Package errors provides structured error types for the mapwright engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP service
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The engine distinguishes four failure categories:
//   - NOT_FOUND: an operation named a node or edge id that does not exist.
//     Update and delete treat this as a no-op and never return it; lookups
//     and the HTTP layer use it to report missing entities.
//   - INVALID_REFERENCE: an edge would point at a node that does not exist.
//   - INVALID_FORMAT: an import payload is structurally unparsable.
//   - VALIDATION: a single import row is malformed and was dropped.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidReference, "unknown target node %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidReference) {
//	    // Reject the edge
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode canvas")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeValidation       Code = "VALIDATION"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error. Cause is optional.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with an underlying cause, which stays reachable through
// errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// codeOf finds the first coded error in err's chain. A *RowError counts
// as ErrCodeValidation.
func codeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	var re *RowError
	if errors.As(err, &re) {
		return ErrCodeValidation, true
	}
	return "", false
}

// Is reports whether the first coded error in err's chain has code.
func Is(err error, code Code) bool {
	c, ok := codeOf(err)
	return ok && c == code
}

// GetCode returns the code of the first coded error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	c, _ := codeOf(err)
	return c
}

// UserMessage returns err's message without the code prefix. Uncoded
// errors are returned as they are.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var re *RowError
	if errors.As(err, &re) {
		return fmt.Sprintf("line %d: %s", re.Line, re.Reason)
	}
	return err.Error()
}

// RowError describes one import row that failed validation.
// It carries ErrCodeValidation so callers can treat it like any other
// coded error.
type RowError struct {
	Line    int    // 1-based line number in the source text
	Columns int    // Number of columns found
	Reason  string // Why the row was dropped
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", ErrCodeValidation, e.Line, e.Reason)
}

// Code returns ErrCodeValidation.
func (e *RowError) Code() Code { return ErrCodeValidation }
