package config

import "time"

// SessionConfig configures the session manager and its identity client.
type SessionConfig interface {
	GetAuthBaseURL() string
	GetRefreshThreshold() time.Duration
	GetRefreshTimeout() time.Duration
	GetRequestTimeout() time.Duration
	// GetJWKSURL returns the key set used to verify issued tokens. Empty
	// disables signature checks.
	GetJWKSURL() string
}

type SessionVars struct {
	AuthBaseURL      string        `env:"AUTH_BASE_URL" envDefault:"http://localhost:8081"`
	RefreshThreshold time.Duration `env:"AUTH_REFRESH_THRESHOLD" envDefault:"5m"`
	RefreshTimeout   time.Duration `env:"AUTH_REFRESH_TIMEOUT" envDefault:"30s"`
	RequestTimeout   time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"30s"`
	JWKSURL          string        `env:"JWKS_URL"`
}

var _ SessionConfig = SessionVars{}

func (s SessionVars) GetAuthBaseURL() string {
	return s.AuthBaseURL
}

func (s SessionVars) GetRefreshThreshold() time.Duration {
	return s.RefreshThreshold
}

func (s SessionVars) GetRefreshTimeout() time.Duration {
	return s.RefreshTimeout
}

func (s SessionVars) GetRequestTimeout() time.Duration {
	return s.RequestTimeout
}

func (s SessionVars) GetJWKSURL() string {
	return s.JWKSURL
}
