package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer issues tokens and parses the ones it issued. The session manager
// never signs anything; signers back the development identity provider and
// tests.
type Signer interface {
	Sign(claims jwt.MapClaims) (string, error)
	// Parse verifies raw into claims. Tokens signed with any other algorithm
	// are rejected.
	Parse(raw string, claims jwt.Claims, opts ...jwt.ParserOption) error
}

// keyedSigner signs with one algorithm and one key.
type keyedSigner struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	keyID     string
}

func (k *keyedSigner) Sign(claims jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(k.method, claims)
	if k.keyID != "" {
		t.Header["kid"] = k.keyID
	}
	raw, err := t.SignedString(k.signKey)
	if err != nil {
		return "", errors.Wrapf(err, "sign token with %s", k.method.Alg())
	}
	return raw, nil
}

func (k *keyedSigner) Parse(raw string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts, jwt.WithValidMethods([]string{k.method.Alg()}))
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return k.verifyKey, nil
	}, opts...)
	return err
}

// HMACSigner signs with HS256 and a shared secret.
type HMACSigner struct {
	keyedSigner
}

func NewHMACSigner(secret string) *HMACSigner {
	key := []byte(secret)
	return &HMACSigner{keyedSigner{method: jwt.SigningMethodHS256, signKey: key, verifyKey: key}}
}

// KeyPairSigner signs with an RSA or ECDSA private key and publishes the
// public half as a JWKS.
type KeyPairSigner struct {
	keyedSigner
	keyPair *KeyPair
}

func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{
		keyedSigner: keyedSigner{
			method:    keyPair.GetSigningMethod(),
			signKey:   keyPair.PrivateKey,
			verifyKey: keyPair.PublicKey,
			keyID:     keyPair.KeyID,
		},
		keyPair: keyPair,
	}
}

// GetJWKS returns the key set served on the well-known route.
func (a *KeyPairSigner) GetJWKS() (*JWKS, error) {
	jwk, err := a.keyPair.ToJWK()
	if err != nil {
		return nil, errors.Wrap(err, "convert key to JWK")
	}
	return &JWKS{Keys: []JWK{*jwk}}, nil
}

// PublicKey returns the verification key of the pair.
func (a *KeyPairSigner) PublicKey() any {
	return a.keyPair.PublicKey
}
