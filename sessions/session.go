package sessions

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-auth-session/token"
	"github.com/pkg/errors"
)

// Session is the authenticated state of the process. The user claims are
// denormalized from the access token so reads never need to decode it.
type Session struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         token.Claims `json:"user"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.User = *s.User.Clone()
	return &cp
}

// Store persists the single active session. Implementations write the access
// token, refresh token and user as one unit so a Load never sees a mix of two
// different writes. Stores apply no expiry logic of their own.
type Store interface {
	Save(ctx context.Context, session *Session) error
	// Load returns nil, nil when no session is stored.
	Load(ctx context.Context) (*Session, error)
	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Marshal encodes a session as the composite document every store persists.
func Marshal(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal session")
	}
	return data, nil
}

// Unmarshal decodes a document written by Marshal.
func Unmarshal(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "unmarshal session")
	}
	return &s, nil
}
