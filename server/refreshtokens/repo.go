package refreshtokens

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

// StoredRefreshToken is the server-side record behind an opaque refresh
// token. The client only ever sees Token.
type StoredRefreshToken struct {
	Token    string
	UserID   string
	TenantID string
	Iat      time.Time
}

// Repo stores refresh tokens keyed by the token string.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	// Take returns the record and deletes it, so a token redeems once.
	Take(token string) (*StoredRefreshToken, error)
	// DeleteByUserID revokes every token issued to the user.
	DeleteByUserID(userID string) int
}
