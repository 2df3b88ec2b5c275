package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents an esopt error code.
type ErrorCode string

// Error codes.
const (
	// E1xxx: Usage errors
	ErrUsage ErrorCode = "E1001"

	// E2xxx: Code generation diagnostics
	ErrUnresolvedNodeKind ErrorCode = "E2001"

	// E3xxx: Evaluation failures, recovered locally by the optimizer
	ErrFoldTimeout   ErrorCode = "E3001"
	ErrFoldAbandoned ErrorCode = "E3002"

	// E4xxx: Structural errors
	ErrStructuralInvariant ErrorCode = "E4001"

	// E5xxx: Front-end errors
	ErrParse ErrorCode = "E5001"

	// E6xxx: Pipeline errors
	ErrRoundLimit ErrorCode = "E6001"
)

// Error represents a structured esopt error.
type Error struct {
	Code    ErrorCode
	Message string
	Node    NodeID
	Err     error
}

// NewError creates a new error attached to node (NoNode when not applicable).
func NewError(code ErrorCode, message string, node NodeID) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Node:    node,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Node >= 0 {
		return fmt.Sprintf("%s at node %d: %s", e.Code, e.Node, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsCode reports whether err, or any error it wraps, is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}
