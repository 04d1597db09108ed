// Package errors provides structured error types for the flowsmith engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages carrying the offending node/edge id
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes fall into three severity bands:
//   - User-facing, recoverable: GRAPH_STRUCTURE, MISSING_PARAMETER, INVALID_*
//   - Non-fatal diagnostics: UNSUPPORTED_COMPONENT
//   - Internal defects: LAYOUT_OVERLAP, REFERENTIAL_INTEGRITY, INTERNAL_ERROR
//
// Internal defects indicate a bug in the engine itself, never in caller
// input. Retrying the same input reproduces the same defect, so callers
// should alert rather than retry.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeGraphStructure, "edge %s targets unknown node %s", edgeID, ref)
//	if errors.Is(err, errors.ErrCodeGraphStructure) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "serialize manifest entry %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// User-facing, recoverable by changing caller input
	ErrCodeGraphStructure   Code = "GRAPH_STRUCTURE"
	ErrCodeMissingParameter Code = "MISSING_PARAMETER"
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Resource not found
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"

	// Non-fatal diagnostics
	ErrCodeUnsupportedComponent Code = "UNSUPPORTED_COMPONENT"

	// Internal defects (never caused by caller input)
	ErrCodeLayoutOverlap        Code = "LAYOUT_OVERLAP"
	ErrCodeReferentialIntegrity Code = "REFERENTIAL_INTEGRITY"
	ErrCodeInternal             Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsFatal reports whether err represents an internal engine defect.
// Fatal errors abort assembly entirely; retrying with the same input
// reproduces the same defect, so callers should alert instead of retrying.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeLayoutOverlap, ErrCodeReferentialIntegrity, ErrCodeInternal:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
