package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/stretchr/testify/require"
)

func TestSigner_SignParse(t *testing.T) {
	keyPair, err := token.GenerateRSAKeyPair("kid-1", 2048)
	require.NoError(t, err)

	signers := map[string]token.Signer{
		"hmac":     token.NewHMACSigner("secret"),
		"key pair": token.NewKeyPairSigner(keyPair),
	}
	for name, signer := range signers {
		t.Run(name, func(t *testing.T) {
			raw, err := signer.Sign(jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
			require.NoError(t, err)

			claims := jwt.MapClaims{}
			require.NoError(t, signer.Parse(raw, claims, jwt.WithExpirationRequired()))
			require.Equal(t, "user-1", claims["sub"])
		})
	}
}

func TestSigner_RejectsForeignTokens(t *testing.T) {
	keyPair, err := token.GenerateRSAKeyPair("kid-1", 2048)
	require.NoError(t, err)
	hmac := token.NewHMACSigner("secret")
	claims := jwt.MapClaims{"sub": "user-1"}

	other, err := token.NewHMACSigner("other-secret").Sign(claims)
	require.NoError(t, err)
	require.Error(t, hmac.Parse(other, jwt.MapClaims{}))

	rsaSigned, err := token.NewKeyPairSigner(keyPair).Sign(claims)
	require.NoError(t, err)
	require.ErrorIs(t, hmac.Parse(rsaSigned, jwt.MapClaims{}), jwt.ErrTokenSignatureInvalid)

	parsed, _, err := jwt.NewParser().ParseUnverified(rsaSigned, jwt.MapClaims{})
	require.NoError(t, err)
	require.Equal(t, "kid-1", parsed.Header["kid"])
}
