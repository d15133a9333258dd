package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, ":8081", c.GetPort())
	require.Equal(t, 5*time.Minute, c.GetRefreshThreshold())
	require.Equal(t, 30*time.Second, c.GetRefreshTimeout())
	require.Equal(t, config.StoreFile, c.GetSessionStore())
	require.Equal(t, "auth:session", c.GetRedisKey())
	require.Empty(t, c.GetJWKSURL())
	require.Empty(t, c.GetAllowedOrigins())
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("AUTH_BASE_URL", "https://idp.example.com/api")
	t.Setenv("AUTH_REFRESH_THRESHOLD", "90s")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_TTL", "24h")
	t.Setenv("DEVIDP_ACCESS_TTL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "https://idp.example.com/api", c.GetAuthBaseURL())
	require.Equal(t, 90*time.Second, c.GetRefreshThreshold())
	require.Equal(t, config.StoreRedis, c.GetSessionStore())
	require.Equal(t, 24*time.Hour, c.GetRedisTTL())
	require.Equal(t, 2*time.Minute, c.GetAccessTokenTTL())

	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://localhost:3000"))
	require.True(t, origins.IsAllowedOrigin("https://app.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://evil.example.com"))
	require.Equal(t, "http://localhost:3000, https://app.example.com", origins.String())
}

func TestNew_Invalid(t *testing.T) {
	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "sqlite")
		_, err := config.New()
		require.ErrorContains(t, err, "SESSION_STORE")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("AUTH_REFRESH_TIMEOUT", "soon")
		_, err := config.New()
		require.Error(t, err)
	})
}
