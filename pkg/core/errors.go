package core

import "errors"

// Common errors.
var (
	ErrInvalidID          = errors.New("invalid note id")
	ErrNotFound           = errors.New("note not found")
	ErrBadRequest         = errors.New("bad request")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsDomainError reports whether err is one of the errors a store is expected to
// return for a well-behaved request (as opposed to an infrastructure failure).
func IsDomainError(err error) bool {
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBadRequest)
}
