package token

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrMalformedToken is returned when a token cannot be interpreted at all.
var ErrMalformedToken = errors.New("malformed token")

// segmentParser only decodes base64url segments; it never verifies anything.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts the claims from the payload segment of a bearer token.
//
// The header and signature are not interpreted and no signature check is made.
// Decode fails with ErrMalformedToken when the token does not have exactly
// three segments, the payload is not base64url, or the payload is not a JSON
// object. Claims that are simply absent are returned as zero values.
func Decode(raw string) (*Claims, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}
	return normalizeClaims(payload), nil
}

func decodePayload(raw string) (jwt.MapClaims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, errors.Wrapf(ErrMalformedToken, "expected 3 segments, got %d", len(parts))
	}

	data, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedToken, "payload is not base64url: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload jwt.MapClaims
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrapf(ErrMalformedToken, "payload is not a JSON object: %v", err)
	}
	if payload == nil {
		return nil, errors.Wrap(ErrMalformedToken, "payload is null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(ErrMalformedToken, "trailing data after payload object")
	}
	return payload, nil
}
