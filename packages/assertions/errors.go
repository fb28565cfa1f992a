package assertions

import (
	"errors"
	"fmt"
)

// ErrAssertionFailed is the sentinel wrapped by every AssertionError.
var ErrAssertionFailed = errors.New("assertion failed")

// AssertionError is returned by an assertion whose condition does not hold.
type AssertionError struct {
	Message string
}

// Error returns the failure message.
func (e *AssertionError) Error() string {
	if e == nil || e.Message == "" {
		return ErrAssertionFailed.Error()
	}
	return e.Message
}

// Unwrap returns ErrAssertionFailed so callers can use errors.Is.
func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

// IsAssertionError reports whether err is, or wraps, an assertion failure.
func IsAssertionError(err error) bool {
	return errors.Is(err, ErrAssertionFailed)
}

// fail builds an AssertionError, preferring the caller's message over
// defaultMsg.
func fail(defaultMsg string, msgAndArgs ...any) error {
	msg := messageFromMsgAndArgs(msgAndArgs...)
	if msg == "" {
		msg = defaultMsg
	}
	return &AssertionError{Message: msg}
}

func messageFromMsgAndArgs(msgAndArgs ...any) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		if msg, ok := msgAndArgs[0].(string); ok {
			return msg
		}
		if msgAndArgs[0] == nil {
			return ""
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	default:
		if format, ok := msgAndArgs[0].(string); ok {
			return fmt.Sprintf(format, msgAndArgs[1:]...)
		}
		return fmt.Sprint(msgAndArgs...)
	}
}
