package engine

import "errors"

// Failure taxonomy for record operations. Backend failures are passed through
// as *backend.Error with their native code and message intact.
var (
	// ErrNotFound is returned when unique-key or literal-id resolution found
	// nothing.
	ErrNotFound = errors.New("no matching record")

	// ErrConflict is returned when a unique-key lookup matched more than one
	// record.
	ErrConflict = errors.New("unique key matched more than one record")

	// ErrNoIdentifier is returned when a request record lacks a usable
	// identifier where one is required.
	ErrNoIdentifier = errors.New("record identifier required")
)

// Synthetic multistatus codes for failures the engine detects itself. They
// are HTTP-style, distinguishable from the backend's native code space, which
// is preserved in the entry's reason text.
const (
	statusNoMatch    = 404
	statusConflict   = 409
	statusBadRequest = 400
	statusBackend    = 500
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return statusNoMatch
	case errors.Is(err, ErrConflict):
		return statusConflict
	case errors.Is(err, ErrNoIdentifier):
		return statusBadRequest
	default:
		return statusBackend
	}
}
