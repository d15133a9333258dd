package server

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/jrsteele09/go-auth-session/server/refreshtokens"
	"github.com/jrsteele09/go-auth-session/tenants"
	"github.com/jrsteele09/go-auth-session/users"
	"github.com/pkg/errors"
)

// issueTokens signs an access token for user in tenant and stores a fresh
// opaque refresh token.
func (s *Server) issueTokens(user *users.User, tenant *tenants.Tenant) (*identity.TokenResponse, error) {
	now := s.nowTime()
	ttl := s.AccessTokenTTL()

	accessToken, err := s.signer.Sign(jwt.MapClaims{
		"sub":         user.ID,
		"username":    user.Username,
		"tenant_id":   tenant.ID,
		"code":        tenant.Code,
		"tenant_name": tenant.Name,
		"roles":       user.GetRolesForTenant(tenant.ID),
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
		"jti":         uuid.NewString(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "sign access token")
	}

	refreshToken := uuid.NewString()
	if err := s.refreshTokens.Upsert(&refreshtokens.StoredRefreshToken{
		Token:    refreshToken,
		UserID:   user.ID,
		TenantID: tenant.ID,
		Iat:      now,
	}); err != nil {
		return nil, errors.Wrap(err, "store refresh token")
	}

	return &identity.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(ttl.Seconds()),
	}, nil
}
