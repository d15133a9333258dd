// Package redisstore persists the session in Redis as one JSON value under a
// single key, so every write replaces all session fields at once.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/go-auth-session/sessions"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "auth:session"

type Store struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

var _ sessions.Store = (*Store)(nil)

// New creates a store writing to key. A ttl of zero keeps the value until it is
// cleared; expiry of the tokens themselves is never decided here.
func New(rdb *redis.Client, key string, ttl time.Duration) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{rdb: rdb, key: key, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, session *sessions.Session) error {
	data, err := sessions.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return pkgerrors.Wrap(err, "redisstore.Save")
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (*sessions.Session, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "redisstore.Load")
	}
	return sessions.Unmarshal(data)
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return pkgerrors.Wrap(err, "redisstore.Clear")
	}
	return nil
}
