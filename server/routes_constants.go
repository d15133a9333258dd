package server

// Route path constants
const (
	// Identity endpoint contract
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"

	// Protected API
	RouteAPIMe = "/api/me"

	// Discovery and operations
	RouteWellKnownJWKS = "/.well-known/jwks.json"
	RouteMetrics       = "/metrics"
)
