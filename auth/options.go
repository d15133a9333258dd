package auth

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-session/metrics"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/rs/zerolog"
)

// SessionManagerOption modifies a SessionManager at construction.
type SessionManagerOption func(*SessionManager)

// WithLogger sets the logger. The global zerolog logger is used otherwise.
func WithLogger(logger zerolog.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		m.log = logger
	}
}

// WithMetrics sets the recorder for lifecycle events. Events are discarded
// otherwise.
func WithMetrics(recorder metrics.Recorder) SessionManagerOption {
	return func(m *SessionManager) {
		if recorder != nil {
			m.metrics = recorder
		}
	}
}

// WithHTTPClient sets the client used by AuthorizedRequest.
func WithHTTPClient(client *http.Client) SessionManagerOption {
	return func(m *SessionManager) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// WithClock sets the now time function (primarily for testing)
func WithClock(nowFunc func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		if nowFunc != nil {
			m.nowTime = nowFunc
		}
	}
}

// WithRefreshThreshold sets how close to expiry a token is renewed in the
// background. Defaults to token.RefreshThreshold.
func WithRefreshThreshold(d time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.refreshThreshold = d
		}
	}
}

// WithRefreshTimeout bounds a single renewal.
func WithRefreshTimeout(d time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.refreshTimeout = d
		}
	}
}

// WithVerifier checks the signature of every token received from the identity
// endpoint before it is persisted.
func WithVerifier(verifier token.Verifier) SessionManagerOption {
	return func(m *SessionManager) {
		m.verifier = verifier
	}
}

// WithTenantHeader makes AuthorizedRequest send the session's tenant id in
// HeaderTenantID. Only the Authorization header is added otherwise.
func WithTenantHeader() SessionManagerOption {
	return func(m *SessionManager) {
		m.tenantHeader = true
	}
}
