package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-auth-session/sessions"
	"github.com/jrsteele09/go-auth-session/sessions/redisstore"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testSession() *sessions.Session {
	return &sessions.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: token.Claims{
			Subject:    "user-1",
			ExpiresAt:  1_700_000_000,
			TenantID:   "tenant-1",
			TenantCode: "ACME",
			Roles:      []string{"admin"},
		},
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := redisstore.New(rdb, "", 0)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)

	require.NoError(t, store.Save(ctx, testSession()))
	require.True(t, mr.Exists(redisstore.DefaultKey))
	require.Len(t, mr.Keys(), 1, "session must be a single key")

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, testSession(), loaded)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := redisstore.New(rdb, "custom", time.Hour)

	require.NoError(t, store.Save(ctx, testSession()))
	require.Equal(t, time.Hour, mr.TTL("custom"))

	mr.FastForward(2 * time.Hour)
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := redisstore.New(rdb, "", 0)
	mr.Close()

	require.Error(t, store.Save(ctx, testSession()))
	_, err := store.Load(ctx)
	require.Error(t, err)
}
