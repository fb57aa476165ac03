// Package errors defines the error taxonomy shared by every layer of
// magtape: the drive, the navigator, the stream manager, the catalog codec,
// and the backup/restore agents all return the same DriverError interface.
package errors

import "fmt"

// DriverError is the error type returned by every magtape operation that can
// fail. It wraps a stable, comparable Kind so callers can switch on *why* an
// operation failed (tapemark, end of media, invalid state, ...) without
// string-matching error messages.
type DriverError interface {
	error

	// Kind returns the underlying taxonomy value this error represents.
	Kind() Kind

	// WithMessage returns a copy of this error with additional context
	// appended to its message.
	WithMessage(message string) DriverError

	// WrapError returns a copy of this error that wraps another error,
	// preserving it for errors.Unwrap / errors.Is chains.
	WrapError(err error) DriverError

	Unwrap() error
}

type customDriverError struct {
	kind          Kind
	message       string
	originalError error
}

func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) Kind() Kind {
	return e.kind
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customDriverError) WrapError(err error) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}
