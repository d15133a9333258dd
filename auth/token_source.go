package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-session/token"
	"golang.org/x/oauth2"
)

// TokenSource adapts the manager to oauth2.TokenSource, so it can back an
// oauth2.Transport or oauth2.NewClient. Every Token call goes through
// EnsureValidToken with ctx.
func (m *SessionManager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, manager: m}
}

type managerTokenSource struct {
	ctx     context.Context
	manager *SessionManager
}

func (s *managerTokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.manager.EnsureValidToken(s.ctx)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if claims, err := token.Decode(accessToken); err == nil && claims.ExpiresAt > 0 {
		tok.Expiry = time.Unix(claims.ExpiresAt, 0)
	}
	return tok, nil
}

// AuthHeader returns the Authorization header for the current token, or an
// empty header when anonymous. It never renews.
func (m *SessionManager) AuthHeader() http.Header {
	header := http.Header{}
	session, _ := m.snapshot()
	if session != nil {
		header.Set("Authorization", "Bearer "+session.AccessToken)
	}
	return header
}
