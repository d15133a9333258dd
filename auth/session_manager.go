// Package auth owns the authenticated session of the process: it logs in,
// keeps the access token fresh and authorizes outbound requests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/jrsteele09/go-auth-session/metrics"
	"github.com/jrsteele09/go-auth-session/refresh"
	"github.com/jrsteele09/go-auth-session/sessions"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// IdentityProvider is the identity endpoint the manager logs in and renews
// against. *identity.Client implements it.
type IdentityProvider interface {
	Login(ctx context.Context, creds identity.Credentials) (*identity.TokenResponse, error)
	refresh.Renewer
}

// State is the lifecycle state of the session.
type State string

const (
	StateAnonymous          State = "ANONYMOUS"
	StateAuthenticated      State = "AUTHENTICATED"
	StateAuthenticatedStale State = "AUTHENTICATED_STALE"
	StateExpired            State = "EXPIRED"
)

const defaultRequestTimeout = 30 * time.Second

// SessionManager is the only writer of the session store. All methods are
// safe for concurrent use.
type SessionManager struct {
	provider    IdentityProvider
	store       sessions.Store
	coordinator *refresh.Coordinator

	httpClient       *http.Client
	verifier         token.Verifier
	metrics          metrics.Recorder
	log              zerolog.Logger
	nowTime          func() time.Time
	refreshThreshold time.Duration
	refreshTimeout   time.Duration
	tenantHeader     bool

	mu         sync.RWMutex
	current    *sessions.Session // never mutated once published
	generation uint64            // bumped by every login and logout

	proactive  atomic.Bool // a background renewal is outstanding
	bgMu       sync.Mutex
	closed     bool
	background sync.WaitGroup
}

// NewSessionManager creates a manager and restores any session persisted in
// store. Restoring makes no network call; a store that cannot be read leaves
// the manager anonymous.
func NewSessionManager(
	ctx context.Context,
	provider IdentityProvider,
	store sessions.Store,
	options ...SessionManagerOption,
) (*SessionManager, error) {
	if provider == nil {
		return nil, errors.New("[NewSessionManager] identity provider is required")
	}
	if store == nil {
		return nil, errors.New("[NewSessionManager] session store is required")
	}

	m := &SessionManager{
		provider:         provider,
		store:            store,
		httpClient:       &http.Client{Timeout: defaultRequestTimeout},
		metrics:          metrics.Noop{},
		log:              log.Logger,
		nowTime:          time.Now,
		refreshThreshold: token.RefreshThreshold,
		refreshTimeout:   refresh.DefaultTimeout,
	}
	for _, opt := range options {
		opt(m)
	}

	m.coordinator = refresh.New(provider,
		refresh.WithTimeout(m.refreshTimeout),
		refresh.WithMetrics(m.metrics),
		refresh.WithLogger(m.log),
	)

	session, err := store.Load(ctx)
	switch {
	case err != nil:
		m.log.Err(err).Msg("Unable to restore session, starting anonymous")
	case session != nil && session.AccessToken != "":
		m.current = session
		m.log.Debug().Str("subject", session.User.Subject).Msg("Session restored")
	}
	return m, nil
}

// Login exchanges credentials for a token pair and persists the new session,
// replacing any existing one. Failures wrap one of identity.ErrInvalidCredentials,
// identity.ErrAccountLocked, identity.ErrTenantNotFound or
// identity.ErrServerError, and leave the store untouched.
func (m *SessionManager) Login(ctx context.Context, creds identity.Credentials) (*sessions.Session, error) {
	resp, err := m.provider.Login(ctx, creds)
	if err != nil {
		m.metrics.LoginCompleted(metrics.OutcomeFailure)
		return nil, err
	}

	session, err := m.newSession(ctx, resp.AccessToken, resp.RefreshToken, creds.TenantCode)
	if err != nil {
		m.metrics.LoginCompleted(metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: %w", identity.ErrServerError, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(ctx, session); err != nil {
		m.metrics.LoginCompleted(metrics.OutcomeFailure)
		return nil, errors.Wrap(err, "[Login] save session")
	}
	m.current = session
	m.generation++

	m.metrics.LoginCompleted(metrics.OutcomeSuccess)
	m.log.Info().Str("subject", session.User.Subject).Str("tenant", session.User.TenantCode).Msg("Logged in")
	return session.Clone(), nil
}

// Logout clears the session. It is idempotent and never fails; a store that
// cannot be cleared is logged.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(ctx)
}

// EnsureValidToken returns an access token that is valid now.
//
// An expired token is renewed before returning. A token close to expiry is
// returned as is while a renewal starts in the background. A failed renewal
// ends the session and returns ErrUnauthenticated, as does having no session.
func (m *SessionManager) EnsureValidToken(ctx context.Context) (string, error) {
	session, gen := m.snapshot()
	if session == nil {
		return "", ErrUnauthenticated
	}

	v := token.ValidateWithThreshold(&session.User, m.nowTime(), m.refreshThreshold)
	switch {
	case v.IsExpired:
		return m.renew(ctx, session, gen)
	case v.NeedsRefresh:
		m.renewInBackground(session, gen)
	}
	return session.AccessToken, nil
}

// CurrentSession returns a copy of the session, or nil when anonymous.
func (m *SessionManager) CurrentSession() *sessions.Session {
	session, _ := m.snapshot()
	return session.Clone()
}

// CurrentUser returns a copy of the user claims, or nil when anonymous.
func (m *SessionManager) CurrentUser() *token.Claims {
	session, _ := m.snapshot()
	if session == nil {
		return nil
	}
	return session.User.Clone()
}

// IsAuthenticated reports whether there is a session whose access token has
// not expired. It never renews.
func (m *SessionManager) IsAuthenticated() bool {
	state := m.State()
	return state == StateAuthenticated || state == StateAuthenticatedStale
}

// State reports the lifecycle state of the session at the manager's clock.
func (m *SessionManager) State() State {
	session, _ := m.snapshot()
	if session == nil {
		return StateAnonymous
	}
	v := token.ValidateWithThreshold(&session.User, m.nowTime(), m.refreshThreshold)
	switch {
	case v.IsExpired:
		return StateExpired
	case v.NeedsRefresh:
		return StateAuthenticatedStale
	default:
		return StateAuthenticated
	}
}

// Close waits for background renewals and stops new ones from starting.
func (m *SessionManager) Close() {
	m.bgMu.Lock()
	m.closed = true
	m.bgMu.Unlock()
	m.background.Wait()
}

func (m *SessionManager) snapshot() (*sessions.Session, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.generation
}

// renew redeems the session's refresh token. Callers that give up on ctx get
// ctx.Err() and leave the session alone.
func (m *SessionManager) renew(ctx context.Context, session *sessions.Session, gen uint64) (string, error) {
	accessToken, err := m.coordinator.Refresh(ctx, session.RefreshToken, m.commitFunc(session, gen))
	if err == nil {
		return accessToken, nil
	}
	if !errors.Is(err, refresh.ErrRefreshFailed) {
		return "", err
	}
	m.expire(ctx, gen, err)
	return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
}

func (m *SessionManager) renewInBackground(session *sessions.Session, gen uint64) {
	if !m.proactive.CompareAndSwap(false, true) {
		return
	}

	m.bgMu.Lock()
	if m.closed {
		m.bgMu.Unlock()
		m.proactive.Store(false)
		return
	}
	m.background.Add(1)
	m.bgMu.Unlock()

	go func() {
		defer m.background.Done()
		defer m.proactive.Store(false)
		if _, err := m.renew(context.Background(), session, gen); err != nil {
			m.log.Err(err).Msg("Background token refresh failed")
		}
	}()
}

// commitFunc persists a renewal of prev, as long as prev's login is still
// the current one.
func (m *SessionManager) commitFunc(prev *sessions.Session, gen uint64) refresh.CommitFunc {
	return func(ctx context.Context, resp *identity.TokenResponse) error {
		refreshToken := resp.RefreshToken
		if refreshToken == "" {
			refreshToken = prev.RefreshToken
		}
		next, err := m.newSession(ctx, resp.AccessToken, refreshToken, prev.User.TenantCode)
		if err != nil {
			return err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.generation != gen {
			return ErrSessionReplaced
		}
		if err := m.store.Save(ctx, next); err != nil {
			return errors.Wrap(err, "save renewed session")
		}
		m.current = next
		return nil
	}
}

// newSession decodes accessToken into a session. The tenant code falls back
// to tenantCode and then to one synthesized from the tenant id.
func (m *SessionManager) newSession(ctx context.Context, accessToken, refreshToken, tenantCode string) (*sessions.Session, error) {
	if m.verifier != nil {
		if err := m.verifier.Verify(ctx, accessToken); err != nil {
			return nil, err
		}
	}
	claims, err := token.Decode(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.TenantCode == "" {
		claims.TenantCode = tenantCode
	}
	claims.TenantCode = claims.TenantCodeOrDefault()

	return &sessions.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *claims,
	}, nil
}

// expire ends the session after a failed renewal unless a newer login or a
// logout already replaced it.
func (m *SessionManager) expire(ctx context.Context, gen uint64, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return
	}
	m.log.Warn().Err(cause).Msg("Session ended")
	m.clearLocked(ctx)
}

func (m *SessionManager) clearLocked(ctx context.Context) {
	m.generation++
	hadSession := m.current != nil
	m.current = nil

	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Err(err).Msg("Unable to clear session store")
	}
	if hadSession {
		m.metrics.Logout()
	}
}
