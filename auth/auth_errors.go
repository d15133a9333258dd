package auth

import "errors"

var (
	// ErrUnauthenticated means no usable access token could be obtained. The
	// session has been cleared before this error is returned.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionReplaced is returned from a renewal whose session was logged
	// out or replaced by a new login while the renewal was in flight.
	ErrSessionReplaced = errors.New("session replaced during refresh")
)
