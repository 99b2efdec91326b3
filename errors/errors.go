// Package errors provides structured error types for waffle.
//
// Every validation or lookup failure raised by the layout engine, the
// front-ends and the renderers carries a machine-readable Code so that the
// CLI (and tests) can tell a label/category mismatch from an unknown icon or
// a broken font without string matching.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeLabelMismatch, "%d labels for %d categories", n, m)
//	if errors.Is(err, errors.ErrCodeLabelMismatch) {
//	    // report to the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFontUnavailable, origErr, "load font %s", src)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Shape and validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidShape     Code = "INVALID_SHAPE"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidAnchor    Code = "INVALID_ANCHOR"
	ErrCodeInvalidLocation  Code = "INVALID_LOCATION"
	ErrCodeLabelMismatch    Code = "LABEL_MISMATCH"
	ErrCodeIconMismatch     Code = "ICON_MISMATCH"
	ErrCodeMarkerMismatch   Code = "MARKER_MISMATCH"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Lookup errors
	ErrCodeMissingStyle    Code = "MISSING_STYLE"
	ErrCodeUnknownIcon     Code = "UNKNOWN_ICON"
	ErrCodeUnknownIconSet  Code = "UNKNOWN_ICON_SET"
	ErrCodeUnknownColor    Code = "UNKNOWN_COLOR"
	ErrCodeUnknownColormap Code = "UNKNOWN_COLORMAP"

	// Rendering errors
	ErrCodeFontUnavailable Code = "FONT_UNAVAILABLE"
	ErrCodeUnsupported     Code = "UNSUPPORTED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
