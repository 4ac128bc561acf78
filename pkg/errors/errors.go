// Package errors contains the error helpers shared by addonsync. Low-level
// errors are wrapped with context as they travel up the stack, and failures
// from the core operations carry a Kind so that callers can tell a locked file
// from a corrupt archive without parsing messages.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// New returns an error with the given message.
func New(format string, args ...interface{}) error {
	if len(args) == 0 {
		return errors.New(format)
	}
	return errors.Errorf(format, args...)
}

// WithContext annotates err with a short description of what was being done
// when it occurred. It returns nil if err is nil.
func WithContext(err error, context string) error {
	return errors.Wrap(err, context)
}

// RootCause returns the innermost error in the chain of wrapped errors.
func RootCause(err error) error {
	for {
		next := stderrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// As is a passthrough to the standard library so that callers don't need to
// import both packages.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// IsError is a passthrough to the standard library's errors.Is.
func IsError(err, target error) bool {
	return stderrors.Is(err, target)
}

// FriendlyError is an error whose message is meant to be shown to the user
// as-is.
type FriendlyError interface {
	error
	FriendlyMessage() string
}

type friendlyError struct {
	msg string
}

// NewFriendlyError creates an error whose message is printed to the user
// without any extra context.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(format, args...)}
}

func (err friendlyError) Error() string {
	return err.msg
}

func (err friendlyError) FriendlyMessage() string {
	return err.msg
}

// GetPrintableMessage returns the friendly message of the first FriendlyError
// in err's chain, or err.Error() if there isn't one.
func GetPrintableMessage(err error) string {
	var friendly FriendlyError
	if stderrors.As(err, &friendly) {
		return friendly.FriendlyMessage()
	}
	return err.Error()
}
