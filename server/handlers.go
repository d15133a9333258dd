package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/jrsteele09/go-auth-session/token"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxRequestSize  = 1 << 16
)

// LoginHandler exchanges credentials for a token pair.
//
// 404 unknown tenant, 401 unknown user, wrong password or no membership of the
// tenant, 423 blocked user.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds identity.Credentials
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize)).Decode(&creds); err != nil {
			s.loginFailed(w, http.StatusBadRequest, "invalid_request", "Malformed login request")
			return
		}

		tenant, err := s.tenants.GetByCode(creds.TenantCode)
		if err != nil {
			s.loginFailed(w, http.StatusNotFound, "tenant_not_found", "Unknown tenant")
			return
		}

		user, err := s.users.GetByUsername(creds.Username)
		if err != nil || !user.CheckPassword(creds.Password) {
			s.loginFailed(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
			return
		}
		if user.Blocked {
			s.loginFailed(w, http.StatusLocked, "account_locked", "Account locked")
			return
		}
		if !user.HasTenant(tenant.ID) {
			s.loginFailed(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
			return
		}

		resp, err := s.issueTokens(user, tenant)
		if err != nil {
			s.log.Err(err).Str("user_id", user.ID).Msg("Failed to issue tokens")
			s.loginFailed(w, http.StatusInternalServerError, "server_error", "Failed to issue tokens")
			return
		}

		s.metrics.logins.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
		s.log.Info().Str("user_id", user.ID).Str("tenant", tenant.Code).Msg("Login succeeded")
		writeJSON(w, http.StatusOK, resp)
	}
}

// RefreshHandler redeems the bearer refresh token for a new token pair. The
// presented refresh token is consumed, so each one works once.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			s.refreshFailed(w, http.StatusUnauthorized, "Missing refresh token")
			return
		}

		stored, err := s.refreshTokens.Take(raw)
		if err != nil {
			s.refreshFailed(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}

		user, err := s.users.GetByID(stored.UserID)
		if err != nil || user.Blocked || !user.HasTenant(stored.TenantID) {
			s.refreshFailed(w, http.StatusUnauthorized, "Refresh not permitted")
			return
		}
		tenant, err := s.tenants.Get(stored.TenantID)
		if err != nil {
			s.refreshFailed(w, http.StatusUnauthorized, "Refresh not permitted")
			return
		}

		resp, err := s.issueTokens(user, tenant)
		if err != nil {
			s.log.Err(err).Str("user_id", user.ID).Msg("Failed to issue tokens")
			s.refreshFailed(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}

		s.metrics.refreshes.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
		writeJSON(w, http.StatusOK, resp)
	}
}

// MeHandler returns the verified claims of the caller's access token.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "No claims")
			return
		}
		writeJSON(w, http.StatusOK, claims)
	}
}

// JWKSHandler publishes the verification key when tokens are signed with a
// key pair. HMAC keys are never published.
func (s *Server) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publisher, ok := s.signer.(interface{ GetJWKS() (*token.JWKS, error) })
		if !ok {
			writeJSONError(w, http.StatusNotFound, "not_found", "No public keys")
			return
		}

		jwks, err := publisher.GetJWKS()
		if err != nil {
			s.log.Err(err).Msg("Failed to build JWKS")
			writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to get JWKS")
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		writeJSON(w, http.StatusOK, jwks)
	}
}

func (s *Server) loginFailed(w http.ResponseWriter, status int, code, description string) {
	s.metrics.logins.WithLabelValues(strconv.Itoa(status)).Inc()
	writeJSONError(w, status, code, description)
}

func (s *Server) refreshFailed(w http.ResponseWriter, status int, description string) {
	s.metrics.refreshes.WithLabelValues(strconv.Itoa(status)).Inc()
	writeJSONError(w, status, "invalid_grant", description)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}
