package errors

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Error is the base error type. It adds a stack trace and supports
// wrapping errors while staying compatible with the stdlib errors package.
type Error struct {
	msg     string
	wrapped error
	stack   []byte
}

// New makes a new error
func New(msg string, args ...interface{}) *Error {
	return &Error{
		msg:   fmt.Sprintf(msg, args...),
		stack: debug.Stack(),
	}
}

// Wrap wraps an error with a new error
func Wrap(err error, msg string, args ...interface{}) *Error {
	if _, ok := err.(*Error); ok {
		// Inner error already carries a stack, don't collect another
		return &Error{
			msg:     fmt.Sprintf(msg, args...),
			wrapped: err,
		}
	}

	return &Error{
		msg:     fmt.Sprintf(msg, args...),
		wrapped: err,
		stack:   debug.Stack(),
	}
}

// Error gets the error output
func (e *Error) Error() string {
	return e.error(0)
}

// Unwrap returns the wrapped error, supporting errors.Is/errors.As
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Inner returns the inner error wrapped by this error
func (e *Error) Inner() error {
	return e.wrapped
}

// InnerMost returns the innermost error wrapped by this error
func (e *Error) InnerMost() error {
	if e.wrapped == nil {
		return e
	}

	if inner, ok := e.wrapped.(*Error); ok {
		return inner.InnerMost()
	}

	return e.wrapped
}

func (e *Error) error(level int) string {
	msg := fmt.Sprintf("%s%s", strings.Repeat("\t", level), e.msg)
	if e.wrapped != nil {
		if wrappedErr, ok := e.wrapped.(*Error); ok {
			msg += fmt.Sprintf("\n%s", wrappedErr.error(level+1))
		} else {
			msg += fmt.Sprintf("\nInternal Error(%T):%s", e.wrapped, e.wrapped.Error())
		}
	}

	if len(e.stack) > 0 {
		msg += fmt.Sprintf("\n\n Stack Trace:\n\n%s", e.stack)
	}

	return msg
}
