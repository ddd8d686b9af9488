// Package errors wraps the standard errors package and adds stack traces,
// multi errors and nested errors with a readable multi-line format.
package errors

import (
	"errors"
	"fmt"
)

type wrappedError struct {
	msg   string
	err   error
	trace StackTrace
}

type withStack struct {
	err   error
	trace StackTrace
}

func New(msg string) error {
	return &withStack{err: errors.New(msg), trace: callers()} // nolint: forbidigo
}

// Errorf formats the message, %w verb is supported.
func Errorf(format string, a ...any) error {
	return &withStack{err: fmt.Errorf(format, a...), trace: callers()} // nolint: forbidigo
}

// Wrap adds a new message on top of the error, the original error remains available via Unwrap.
func Wrap(err error, msg string) error {
	return &wrappedError{msg: msg, err: err, trace: callers()}
}

func Wrapf(err error, format string, a ...any) error {
	return &wrappedError{msg: fmt.Sprintf(format, a...), err: err, trace: callers()}
}

// WithStack adds stack trace to an error, for example from a third party library.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &withStack{err: err, trace: callers()}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func (e *wrappedError) Error() string {
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.err
}

func (e *wrappedError) StackTrace() StackTrace {
	return e.trace
}

func (e *withStack) Error() string {
	return e.err.Error()
}

func (e *withStack) Unwrap() error {
	return e.err
}

func (e *withStack) StackTrace() StackTrace {
	return e.trace
}
