// Package toolerrors provides a structured error type for failures that
// cross the host/sandbox boundary. ToolError preserves a cause chain and
// supports errors.Is/As while still collapsing to a single human-readable
// string for the public {success, error} result shape.
package toolerrors

import (
	"errors"
	"fmt"
)

// ToolError is a structured failure with an optional chained cause. It
// implements error and Unwrap so errors.Is/As work across the chain.
type ToolError struct {
	// Message is the human-readable summary of the failure.
	Message string
	// Cause links to the underlying error, if any.
	Cause *ToolError
	// Kind classifies the failure per the error handling design (see Kind*
	// constants). Zero value is KindUnspecified.
	Kind Kind
}

// New constructs a ToolError with the given message and no cause.
func New(message string) *ToolError {
	if message == "" {
		message = "tool error"
	}
	return &ToolError{Message: message}
}

// NewWithCause constructs a ToolError wrapping an underlying error. The
// cause is converted into a ToolError chain so it survives round-tripping
// through a JSON error payload.
func NewWithCause(message string, cause error) *ToolError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ToolError{Message: message, Cause: FromError(cause)}
}

// NewKind constructs a ToolError tagged with a classification kind.
func NewKind(kind Kind, message string) *ToolError {
	e := New(message)
	e.Kind = kind
	return e
}

// FromError converts an arbitrary error into a ToolError chain, reusing an
// existing ToolError found anywhere in the chain via errors.As.
func FromError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{Message: err.Error(), Cause: FromError(errors.Unwrap(err))}
}

// Errorf formats a message and returns it as a ToolError.
func Errorf(format string, args ...any) *ToolError {
	return New(fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying error to support errors.Is/As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
