package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-session/token"
	"github.com/stretchr/testify/require"
)

func TestValidate_NoClaims(t *testing.T) {
	v := token.Validate(nil, time.Now())
	require.Equal(t, token.Validation{IsValid: false, IsExpired: true, SecondsRemaining: 0, NeedsRefresh: false}, v)
}

func TestValidate_Ranges(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	threshold := int64(token.RefreshThreshold / time.Second)

	t.Run("beyond threshold is valid and fresh", func(t *testing.T) {
		for _, offset := range []int64{threshold + 1, threshold + 60, 86400} {
			v := token.Validate(&token.Claims{ExpiresAt: now.Unix() + offset}, now)
			require.True(t, v.IsValid, "offset %d", offset)
			require.False(t, v.IsExpired, "offset %d", offset)
			require.False(t, v.NeedsRefresh, "offset %d", offset)
			require.Equal(t, offset, v.SecondsRemaining)
		}
	})

	t.Run("within threshold needs refresh", func(t *testing.T) {
		for offset := int64(1); offset <= threshold; offset++ {
			v := token.Validate(&token.Claims{ExpiresAt: now.Unix() + offset}, now)
			require.True(t, v.IsValid, "offset %d", offset)
			require.True(t, v.NeedsRefresh, "offset %d", offset)
		}
	})

	t.Run("at or past expiry is expired", func(t *testing.T) {
		for _, offset := range []int64{0, -1, -10, -86400} {
			v := token.Validate(&token.Claims{ExpiresAt: now.Unix() + offset}, now)
			require.True(t, v.IsExpired, "offset %d", offset)
			require.False(t, v.IsValid, "offset %d", offset)
			require.False(t, v.NeedsRefresh, "offset %d", offset)
			require.Zero(t, v.SecondsRemaining, "offset %d", offset)
		}
	})

	t.Run("missing expiry is expired", func(t *testing.T) {
		v := token.Validate(&token.Claims{Subject: "x"}, now)
		require.True(t, v.IsExpired)
	})
}

func TestValidateWithThreshold(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	claims := &token.Claims{ExpiresAt: now.Unix() + 90}

	require.False(t, token.ValidateWithThreshold(claims, now, time.Minute).NeedsRefresh)
	require.True(t, token.ValidateWithThreshold(claims, now, 2*time.Minute).NeedsRefresh)
}

func TestValidate_Consistency(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	for offset := int64(-400); offset <= 400; offset += 7 {
		v := token.Validate(&token.Claims{ExpiresAt: now.Unix() + offset}, now)
		require.Equal(t, !v.IsExpired, v.IsValid)
		if v.NeedsRefresh {
			require.True(t, v.IsValid)
		}
		require.GreaterOrEqual(t, v.SecondsRemaining, int64(0))
	}
}
