package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-session/auth"
	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/jrsteele09/go-auth-session/server"
	"github.com/jrsteele09/go-auth-session/sessions"
	"github.com/jrsteele09/go-auth-session/tenants"
	tenantrepofakes "github.com/jrsteele09/go-auth-session/tenants/repofakes"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/jrsteele09/go-auth-session/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-session/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword = "correct-horse"
	testSecret   = "test-secret"
)

var aliceCreds = identity.Credentials{Username: "alice", Password: testPassword, TenantCode: "ACME"}

// testFixture runs the development identity provider behind a handler that
// counts, and can hold, refresh calls.
type testFixture struct {
	idp          *server.Server
	http         *httptest.Server
	client       *identity.Client
	users        *fakeuserrepo.FakeUserRepo
	aliceID      string
	refreshCalls atomic.Int32
	refreshGate  atomic.Pointer[chan struct{}]
}

func newTestFixture(t *testing.T, signer token.Signer) *testFixture {
	t.Helper()

	tenantRepo := tenantrepofakes.NewFakeTenantRepo()
	require.NoError(t, tenantRepo.Upsert(&tenants.Tenant{ID: "42", Code: "ACME", Name: "Acme Corporation"}))

	hash, err := users.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	userRepo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, userRepo.Upsert(&users.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: hash,
		Tenants:      []users.TenantMembership{{TenantID: "42", Roles: []users.RoleType{users.RoleTenantUser}}},
	}))

	logger := zerolog.Nop()
	idp, err := server.New(server.Options{
		Env:     "TEST",
		Signer:  signer,
		Users:   userRepo,
		Tenants: tenantRepo,
		Logger:  &logger,
	})
	require.NoError(t, err)

	f := &testFixture{idp: idp, users: userRepo, aliceID: "user-1"}
	f.http = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == server.RouteAuthRefresh {
			f.refreshCalls.Add(1)
			if gate := f.refreshGate.Load(); gate != nil {
				<-*gate
			}
		}
		idp.ServeHTTP(w, r)
	}))
	t.Cleanup(f.http.Close)

	f.client = identity.NewClient(f.http.URL, f.http.Client())
	return f
}

// holdRefreshes blocks refresh calls until the returned func is called.
func (f *testFixture) holdRefreshes() (release func()) {
	gate := make(chan struct{})
	f.refreshGate.Store(&gate)
	return func() {
		f.refreshGate.Store(nil)
		close(gate)
	}
}

func (f *testFixture) newManager(t *testing.T, store sessions.Store, opts ...auth.SessionManagerOption) *auth.SessionManager {
	t.Helper()
	opts = append([]auth.SessionManagerOption{
		auth.WithLogger(zerolog.Nop()),
		auth.WithHTTPClient(f.http.Client()),
	}, opts...)
	m, err := auth.NewSessionManager(context.Background(), f.client, store, opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

// loginWithTTL logs in while the provider issues access tokens with ttl, then
// restores the normal lifetime.
func (f *testFixture) loginWithTTL(t *testing.T, m *auth.SessionManager, ttl time.Duration) *sessions.Session {
	t.Helper()
	f.idp.SetAccessTokenTTL(ttl)
	defer f.idp.SetAccessTokenTTL(time.Hour)

	session, err := m.Login(context.Background(), aliceCreds)
	require.NoError(t, err)
	return session
}

func (f *testFixture) meRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.http.URL+server.RouteAPIMe, nil)
	require.NoError(t, err)
	return req
}

// stubProvider serves canned token responses for tests that need tokens the
// development provider would never issue.
type stubProvider struct {
	login        func(identity.Credentials) (*identity.TokenResponse, error)
	refresh      func(string) (*identity.TokenResponse, error)
	refreshCalls atomic.Int32
}

func (p *stubProvider) Login(_ context.Context, creds identity.Credentials) (*identity.TokenResponse, error) {
	return p.login(creds)
}

func (p *stubProvider) Refresh(_ context.Context, refreshToken string) (*identity.TokenResponse, error) {
	p.refreshCalls.Add(1)
	return p.refresh(refreshToken)
}

func signClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := token.NewHMACSigner(testSecret).Sign(claims)
	require.NoError(t, err)
	return raw
}
