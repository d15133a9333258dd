// Package server is a development identity provider. It implements the login
// and refresh contract the session manager talks to, backed by in-memory
// repositories, so the manager can be exercised end to end.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-auth-session/internal/config"
	"github.com/jrsteele09/go-auth-session/server/refreshtokens"
	"github.com/jrsteele09/go-auth-session/tenants"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/jrsteele09/go-auth-session/users"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultAccessTokenTTL = time.Hour

// Options configures a Server. Signer, Users and Tenants are required.
type Options struct {
	Env            string // Environment (e.g., "DEV", "PROD")
	Signer         token.Signer
	Users          users.UserRepo
	Tenants        tenants.Repo
	RefreshTokens  refreshtokens.Repo    // In-memory when nil
	AccessTokenTTL time.Duration         // One hour when zero
	AllowedOrigins config.AllowedOrigins // CORS origins, none when empty
	Registry       *prometheus.Registry  // A private registry when nil
	Logger         *zerolog.Logger       // The global logger when nil
	NowTime        func() time.Time      // time.Now when nil
}

type Server struct {
	env            string
	mux            *http.ServeMux
	routes         []string
	signer         token.Signer
	users          users.UserRepo
	tenants        tenants.Repo
	refreshTokens  refreshtokens.Repo
	allowedOrigins config.AllowedOrigins
	registry       *prometheus.Registry
	metrics        *serverMetrics
	log            zerolog.Logger
	nowTime        func() time.Time

	accessTokenTTL atomic.Int64 // nanoseconds
}

func New(opts Options) (*Server, error) {
	if opts.Signer == nil {
		return nil, errors.New("[Server New] signer is required")
	}
	if opts.Users == nil {
		return nil, errors.New("[Server New] users repo is required")
	}
	if opts.Tenants == nil {
		return nil, errors.New("[Server New] tenants repo is required")
	}

	s := &Server{
		env:            opts.Env,
		mux:            http.NewServeMux(),
		signer:         opts.Signer,
		users:          opts.Users,
		tenants:        opts.Tenants,
		refreshTokens:  opts.RefreshTokens,
		allowedOrigins: opts.AllowedOrigins,
		registry:       opts.Registry,
		log:            log.Logger,
		nowTime:        opts.NowTime,
	}
	if s.refreshTokens == nil {
		s.refreshTokens = refreshtokens.NewInMemoryRepo()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	if s.nowTime == nil {
		s.nowTime = time.Now
	}
	if opts.AccessTokenTTL == 0 {
		opts.AccessTokenTTL = defaultAccessTokenTTL
	}
	s.SetAccessTokenTTL(opts.AccessTokenTTL)

	m, err := newServerMetrics(s.registry)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to register metrics: %w", err)
	}
	s.metrics = m

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// SetAccessTokenTTL changes the lifetime of access tokens issued from now on.
// A negative TTL issues tokens that are already expired.
func (s *Server) SetAccessTokenTTL(ttl time.Duration) {
	s.accessTokenTTL.Store(int64(ttl))
}

func (s *Server) AccessTokenTTL() time.Duration {
	return time.Duration(s.accessTokenTTL.Load())
}

// RevokeRefreshTokens invalidates every refresh token issued to the user and
// returns how many were revoked.
func (s *Server) RevokeRefreshTokens(userID string) int {
	n := s.refreshTokens.DeleteByUserID(userID)
	s.log.Info().Str("user_id", userID).Int("revoked", n).Msg("Refresh tokens revoked")
	return n
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
