package token

import (
	"context"
	"crypto"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// ErrUntrustedToken is returned when a token signature cannot be verified.
var ErrUntrustedToken = errors.New("untrusted token")

// Verifier checks that a token was signed by a trusted key.
type Verifier interface {
	Verify(ctx context.Context, raw string) error
}

// KeySetVerifier verifies token signatures against an OIDC key set.
type KeySetVerifier struct {
	keySet oidc.KeySet
}

var _ Verifier = (*KeySetVerifier)(nil)

// NewKeySetVerifier wraps any oidc.KeySet.
func NewKeySetVerifier(keySet oidc.KeySet) *KeySetVerifier {
	return &KeySetVerifier{keySet: keySet}
}

// NewRemoteVerifier fetches and caches keys from a JWKS endpoint.
// ctx controls the HTTP client used for key fetches (see oidc.ClientContext).
func NewRemoteVerifier(ctx context.Context, jwksURL string) *KeySetVerifier {
	return NewKeySetVerifier(oidc.NewRemoteKeySet(ctx, jwksURL))
}

// NewStaticVerifier verifies against a fixed set of public keys.
func NewStaticVerifier(keys ...crypto.PublicKey) *KeySetVerifier {
	return NewKeySetVerifier(&oidc.StaticKeySet{PublicKeys: keys})
}

func (v *KeySetVerifier) Verify(ctx context.Context, raw string) error {
	if _, err := v.keySet.VerifySignature(ctx, raw); err != nil {
		return errors.Wrapf(ErrUntrustedToken, "signature check failed: %v", err)
	}
	return nil
}
