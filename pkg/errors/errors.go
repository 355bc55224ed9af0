package errors

import (
	goErrors "errors"
	"fmt"
)

// New returns an error that formats as the given text.
func New(msg string) error {
	return goErrors.New(msg)
}

// withContext annotates an error with a description of what was being done
// when the error occurred.
type withContext struct {
	context string
	cause   error
}

func (err withContext) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

func (err withContext) Unwrap() error {
	return err.cause
}

// WithContext wraps `err` with `context`. It returns nil if `err` is nil so
// that it can be used directly in return statements.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return withContext{context: context, cause: err}
}

// RootCause returns the innermost error wrapped by WithContext.
func RootCause(err error) error {
	for {
		next := goErrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goErrors.Is(err, target)
}

// FriendlyError is an error whose message is suitable to show to users
// without any additional context.
type FriendlyError interface {
	error
	FriendlyMessage() string
}

type friendlyError struct {
	msg string
}

// NewFriendlyError creates an error that's shown to the user as is.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(format, args...)}
}

func (err friendlyError) Error() string {
	return err.msg
}

func (err friendlyError) FriendlyMessage() string {
	return err.msg
}

// GetFriendlyMessage returns the message of the outermost FriendlyError in
// the chain of `err`.
func GetFriendlyMessage(err error) (string, bool) {
	for err != nil {
		if friendly, ok := err.(FriendlyError); ok {
			return friendly.FriendlyMessage(), true
		}
		err = goErrors.Unwrap(err)
	}
	return "", false
}
