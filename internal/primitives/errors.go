package primitives

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure reported by the threading layer.
type ErrorCode int32

// Error codes returned by threads, mutexes and semaphores.
const (
	// CodeInvalidArgument indicates malformed creation parameters.
	CodeInvalidArgument ErrorCode = iota + 1
	// CodeInvalidState indicates the operation is not valid in the current lifecycle state.
	CodeInvalidState
	// CodeResourceExhausted indicates a native allocation failure.
	CodeResourceExhausted
	// CodeBusy indicates a destroy was attempted while the object is in use.
	CodeBusy
	// CodeNotOwner indicates a release by a goroutine that does not hold the lock.
	CodeNotOwner
	// CodeOverflow indicates a semaphore signal beyond its declared maximum.
	CodeOverflow
	// CodeTimeout indicates a bounded wait expired without success.
	CodeTimeout
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeInvalidState:
		return "InvalidState"
	case CodeResourceExhausted:
		return "ResourceExhausted"
	case CodeBusy:
		return "Busy"
	case CodeNotOwner:
		return "NotOwner"
	case CodeOverflow:
		return "Overflow"
	case CodeTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by the layer.
//
// Compare against the sentinels with errors.Is; inspect details with errors.As:
//
//	var e *primitives.Error
//	if errors.As(err, &e) {
//	    fmt.Println(e.Code, e.Op)
//	}
type Error struct {
	// Code classifies the failure.
	Code ErrorCode
	// Op names the operation that failed, e.g. "thread.start".
	Op string
	// Message is an optional detail message.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidArgument   = &Error{Code: CodeInvalidArgument}
	ErrInvalidState      = &Error{Code: CodeInvalidState}
	ErrResourceExhausted = &Error{Code: CodeResourceExhausted}
	ErrBusy              = &Error{Code: CodeBusy}
	ErrNotOwner          = &Error{Code: CodeNotOwner}
	ErrOverflow          = &Error{Code: CodeOverflow}
	ErrTimeout           = &Error{Code: CodeTimeout}
)

// NewError builds an *Error with a formatted message.
func NewError(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error around an underlying cause.
func WrapError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf returns the code carried by err, or 0 when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
