package identity

import (
	"errors"
	"fmt"
	"net/http"
)

// Login failures, surfaced to callers verbatim.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrServerError        = errors.New("identity server error")
)

// StatusError is returned for a non-2xx response from the identity endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
}

// loginError maps a login response status to the error taxonomy.
func loginError(status int) error {
	statusErr := &StatusError{Endpoint: RouteLogin, StatusCode: status}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, statusErr)
	case http.StatusLocked:
		return fmt.Errorf("%w: %w", ErrAccountLocked, statusErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrTenantNotFound, statusErr)
	default:
		return fmt.Errorf("%w: %w", ErrServerError, statusErr)
	}
}
