package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/stretchr/testify/require"
)

const testSecret = "codec-test-secret"

func issue(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := token.NewHMACSigner(testSecret).Sign(claims)
	require.NoError(t, err)
	return raw
}

func rawToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecode_RoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	raw := issue(t, jwt.MapClaims{
		"sub":       "user-1",
		"username":  "alice",
		"exp":       exp,
		"iat":       exp - 3600,
		"tenant_id": "tenant-1",
		"code":      "ACME",
		"roles":     []string{"admin", "viewer"},
	})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, exp, claims.ExpiresAt)
	require.Equal(t, exp-3600, claims.IssuedAt)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Equal(t, "ACME", claims.TenantCode)
	require.Equal(t, []string{"admin", "viewer"}, claims.Roles)
	require.True(t, claims.HasRole("viewer"))
	require.False(t, claims.HasRole("owner"))
}

func TestDecode_AliasPriority(t *testing.T) {
	t.Run("first present alias wins", func(t *testing.T) {
		claims, err := token.Decode(issue(t, jwt.MapClaims{
			"user_id":     "from-user-id",
			"sub":         "from-sub",
			"tenantId":    "camel-tenant",
			"tenant_code": "SNAKE",
			"tenantCode":  "CAMEL",
			"tenantName":  "Acme Inc",
		}))
		require.NoError(t, err)
		require.Equal(t, "from-user-id", claims.Subject)
		require.Equal(t, "camel-tenant", claims.TenantID)
		require.Equal(t, "SNAKE", claims.TenantCode)
		require.Equal(t, "Acme Inc", claims.TenantName)
	})

	t.Run("empty value falls through to next alias", func(t *testing.T) {
		claims, err := token.Decode(issue(t, jwt.MapClaims{
			"username":           "",
			"preferred_username": "bob",
		}))
		require.NoError(t, err)
		require.Equal(t, "bob", claims.Username)
	})

	t.Run("numeric tenant id", func(t *testing.T) {
		claims, err := token.Decode(rawToken(`{"tenant_id": 12345678901234567}`))
		require.NoError(t, err)
		require.Equal(t, "12345678901234567", claims.TenantID)
		require.Equal(t, "T12345678901234567", claims.TenantCodeOrDefault())
	})

	t.Run("authorities objects", func(t *testing.T) {
		claims, err := token.Decode(rawToken(`{"authorities":[{"authority":"ROLE_ADMIN"},"ROLE_USER"]}`))
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"ROLE_ADMIN", "ROLE_USER"}, claims.Roles)
	})

	t.Run("space separated roles", func(t *testing.T) {
		claims, err := token.Decode(rawToken(`{"roles":"admin viewer"}`))
		require.NoError(t, err)
		require.Equal(t, []string{"admin", "viewer"}, claims.Roles)
	})
}

func TestDecode_MissingClaimsAreEmpty(t *testing.T) {
	claims, err := token.Decode(rawToken(`{}`))
	require.NoError(t, err)
	require.Empty(t, claims.Subject)
	require.Empty(t, claims.TenantID)
	require.Empty(t, claims.TenantCode)
	require.Empty(t, claims.TenantCodeOrDefault())
	require.Nil(t, claims.Roles)
	require.Zero(t, claims.ExpiresAt)

	claims, err = token.Decode(rawToken(`{"exp":"tomorrow"}`))
	require.NoError(t, err)
	require.Zero(t, claims.ExpiresAt)
}

func TestDecode_TrailingWhitespace(t *testing.T) {
	claims, err := token.Decode(rawToken("{\"sub\":\"x\"}\n"))
	require.NoError(t, err)
	require.Equal(t, "x", claims.Subject)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"payload not base64url", "e30.!!!.sig"},
		{"payload not json", "e30." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"},
		{"payload is array", rawToken(`[1,2,3]`)},
		{"payload is string", rawToken(`"claims"`)},
		{"payload is null", rawToken(`null`)},
		{"trailing garbage", rawToken(`{"sub":"x"}garbage`)},
		{"two objects", rawToken(`{}{}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := token.Decode(tt.raw)
			require.ErrorIs(t, err, token.ErrMalformedToken)
			require.Nil(t, claims)
		})
	}
}

func TestDecode_IgnoresHeaderAndSignature(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x"}`))
	claims, err := token.Decode("not-a-header." + payload + ".")
	require.NoError(t, err)
	require.Equal(t, "x", claims.Subject)

	padded := base64.URLEncoding.EncodeToString([]byte(`{"sub":"pad"}`))
	claims, err = token.Decode("h." + padded + ".s")
	require.NoError(t, err)
	require.Equal(t, "pad", claims.Subject)
}

func TestClaims_Clone(t *testing.T) {
	orig := &token.Claims{Subject: "a", Roles: []string{"r1"}}
	cp := orig.Clone()
	cp.Roles[0] = "changed"
	require.Equal(t, "r1", orig.Roles[0])

	var nilClaims *token.Claims
	require.Nil(t, nilClaims.Clone())
}
