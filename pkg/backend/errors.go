package backend

import (
	"errors"
	"fmt"
)

// CodeNoMatch is the backend-native error code meaning "no matching records".
const CodeNoMatch = 401

// Error is a failure reported by the backend, carrying its native numeric
// code and human-readable message verbatim.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}

// NewError builds a backend error with a native code.
func NewError(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsNoMatch reports whether err is a backend "no matching records" failure.
func IsNoMatch(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == CodeNoMatch
}
