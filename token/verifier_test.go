package token_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/stretchr/testify/require"
)

func newKeyPairSigner(t *testing.T, kid string) *token.KeyPairSigner {
	t.Helper()
	kp, err := token.GenerateRSAKeyPair(kid, 2048)
	require.NoError(t, err)
	return token.NewKeyPairSigner(kp)
}

func TestKeySetVerifier_Static(t *testing.T) {
	trusted := newKeyPairSigner(t, "trusted")
	other := newKeyPairSigner(t, "other")

	claims := jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}
	good, err := trusted.Sign(claims)
	require.NoError(t, err)
	bad, err := other.Sign(claims)
	require.NoError(t, err)

	v := token.NewStaticVerifier(trusted.PublicKey())

	t.Run("trusted key", func(t *testing.T) {
		require.NoError(t, v.Verify(context.Background(), good))
	})

	t.Run("foreign key", func(t *testing.T) {
		require.ErrorIs(t, v.Verify(context.Background(), bad), token.ErrUntrustedToken)
	})

	t.Run("hmac token", func(t *testing.T) {
		require.ErrorIs(t, v.Verify(context.Background(), issue(t, claims)), token.ErrUntrustedToken)
	})
}

func TestKeySetVerifier_Remote(t *testing.T) {
	signer := newKeyPairSigner(t, "remote-key")
	jwks, err := signer.GetJWKS()
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	defer ts.Close()

	raw, err := signer.Sign(jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	v := token.NewRemoteVerifier(context.Background(), ts.URL)
	require.NoError(t, v.Verify(context.Background(), raw))

	forged := newKeyPairSigner(t, "remote-key")
	raw, err = forged.Sign(jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)
	require.ErrorIs(t, v.Verify(context.Background(), raw), token.ErrUntrustedToken)
}

func TestKeyPair_ToJWK(t *testing.T) {
	kp, err := token.GenerateECDSAKeyPair("ec-key")
	require.NoError(t, err)

	jwk, err := kp.ToJWK()
	require.NoError(t, err)
	require.Equal(t, "EC", jwk.Kty)
	require.Equal(t, "P-256", jwk.Crv)
	require.Equal(t, "ES256", jwk.Alg)
	require.Equal(t, jwt.SigningMethodES256, kp.GetSigningMethod())

	signer := token.NewKeyPairSigner(kp)
	raw, err := signer.Sign(jwt.MapClaims{"sub": "ec"})
	require.NoError(t, err)
	require.NoError(t, token.NewStaticVerifier(signer.PublicKey()).Verify(context.Background(), raw))
}
