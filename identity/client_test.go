package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	var got identity.Credentials
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(identity.TokenResponse{
			AccessToken:  "a.b.c",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
		})
	}))
	defer ts.Close()

	c := identity.NewClient(ts.URL+"/api/", nil)
	creds := identity.Credentials{Username: "alice", Password: "secret", TenantCode: "ACME"}
	tr, err := c.Login(context.Background(), creds)
	require.NoError(t, err)
	require.Equal(t, creds, got)
	require.Equal(t, "a.b.c", tr.AccessToken)
	require.Equal(t, "refresh", tr.RefreshToken)
	require.Equal(t, 3600, tr.ExpiresIn)
}

func TestClient_LoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, "", identity.ErrInvalidCredentials},
		{"locked", http.StatusLocked, "", identity.ErrAccountLocked},
		{"unknown tenant", http.StatusNotFound, "", identity.ErrTenantNotFound},
		{"internal error", http.StatusInternalServerError, "", identity.ErrServerError},
		{"bad gateway", http.StatusBadGateway, "", identity.ErrServerError},
		{"success without token", http.StatusOK, `{"refreshToken":"r"}`, identity.ErrServerError},
		{"success with garbage", http.StatusOK, `<html>`, identity.ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			_, err := identity.NewClient(ts.URL, nil).Login(context.Background(), identity.Credentials{})
			require.ErrorIs(t, err, tt.want)

			if tt.status != http.StatusOK {
				var statusErr *identity.StatusError
				require.True(t, errors.As(err, &statusErr))
				require.Equal(t, tt.status, statusErr.StatusCode)
			}
		})
	}
}

func TestClient_LoginTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	_, err := identity.NewClient(ts.URL, nil).Login(context.Background(), identity.Credentials{})
	require.ErrorIs(t, err, identity.ErrServerError)
}

func TestClient_Refresh(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Empty(t, body)

		if r.Header.Get("Authorization") != "Bearer good-refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"accessToken":"new.access.token"}`)
	}))
	defer ts.Close()

	c := identity.NewClient(ts.URL, nil)

	t.Run("success without rotation", func(t *testing.T) {
		tr, err := c.Refresh(context.Background(), "good-refresh")
		require.NoError(t, err)
		require.Equal(t, "new.access.token", tr.AccessToken)
		require.Empty(t, tr.RefreshToken)
	})

	t.Run("rejected", func(t *testing.T) {
		_, err := c.Refresh(context.Background(), "revoked")
		var statusErr *identity.StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		require.Contains(t, err.Error(), "/auth/refresh")
	})
}
