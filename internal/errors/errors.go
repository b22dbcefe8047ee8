package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindIO            Kind = "IO"
	KindSerialization Kind = "SERIALIZATION"
)

// Error is the failure type returned by every repository operation. Kind
// classifies the failure; Err carries the underlying cause when one exists.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

func IO(message string, err error) *Error {
	return &Error{
		Kind:    KindIO,
		Message: message,
		Err:     err,
	}
}

func Serialization(message string, err error) *Error {
	return &Error{
		Kind:    KindSerialization,
		Message: message,
		Err:     err,
	}
}

// IsKind reports whether any error in err's chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
