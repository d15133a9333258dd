package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	RouteLogin   = "/auth/login"
	RouteRefresh = "/auth/refresh"
)

const (
	contentTypeJSON = "application/json"
	maxResponseSize = 1 << 20
)

// Client talks to the identity endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the identity endpoint at baseURL
// (e.g. "http://localhost:8081/api"). A nil httpClient gets a client with a
// 30 second timeout; the transport timeout is the only timeout applied.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Login exchanges credentials for a token pair. Failures wrap one of
// ErrInvalidCredentials, ErrAccountLocked, ErrTenantNotFound or ErrServerError.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "Login marshal credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteLogin, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerError, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, loginError(resp.StatusCode)
	}

	tr, err := decodeTokenResponse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerError, err)
	}
	return tr, nil
}

// Refresh obtains a new access token. The refresh token is sent as the bearer
// credential with no body. Any non-2xx response is a *StatusError.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteRefresh, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Refresh new request")
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Refresh request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: RouteRefresh, StatusCode: resp.StatusCode}
	}
	return decodeTokenResponse(resp.Body)
}

func decodeTokenResponse(r io.Reader) (*TokenResponse, error) {
	var tr TokenResponse
	if err := json.NewDecoder(io.LimitReader(r, maxResponseSize)).Decode(&tr); err != nil {
		return nil, errors.Wrap(err, "decode token response")
	}
	if tr.AccessToken == "" {
		return nil, errors.New("token response has no accessToken")
	}
	return &tr, nil
}
