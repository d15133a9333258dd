package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// HeaderTenantID carries the session's tenant id on authorized requests when
// the manager is built WithTenantHeader.
const HeaderTenantID = "X-Tenant-ID"

// Bytes read from a rejected response before it is closed, so the
// connection can be reused.
const maxDrainSize = 4 << 10

// AuthorizedRequest sends req with the current access token as a bearer
// credential.
//
// A 401 response causes exactly one renewal and one retry. If the retry is
// rejected too, or the renewal fails, the session is cleared and
// ErrUnauthenticated is returned. Transport errors are returned unchanged and
// do not affect the session. Only the Authorization header is added, plus
// HeaderTenantID under WithTenantHeader unless req already sets it. A request body without GetBody is buffered so it
// can be sent twice. req is not modified.
func (m *SessionManager) AuthorizedRequest(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	accessToken, err := m.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}

	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := m.send(req, getBody, accessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drainAndClose(resp)
	m.log.Debug().Str("url", req.URL.Redacted()).Msg("Access token rejected, renewing")

	accessToken, gen, err := m.forceRenew(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	m.metrics.RequestRetried()
	resp, err = m.send(req, getBody, accessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drainAndClose(resp)
		m.expire(ctx, gen, errors.New("renewed access token rejected"))
		return nil, ErrUnauthenticated
	}
	return resp, nil
}

// forceRenew renews a token the server rejected. When another caller already
// replaced the rejected token, the replacement is used instead.
func (m *SessionManager) forceRenew(ctx context.Context, rejected string) (string, uint64, error) {
	session, gen := m.snapshot()
	if session == nil {
		return "", gen, ErrUnauthenticated
	}
	if session.AccessToken != rejected {
		return session.AccessToken, gen, nil
	}
	accessToken, err := m.renew(ctx, session, gen)
	return accessToken, gen, err
}

func (m *SessionManager) send(req *http.Request, getBody func() (io.ReadCloser, error), accessToken string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, errors.Wrap(err, "rewind request body")
		}
		out.Body = body
		out.GetBody = getBody
	}
	(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(out)
	if m.tenantHeader && out.Header.Get(HeaderTenantID) == "" {
		if session, _ := m.snapshot(); session != nil && session.AccessToken == accessToken && session.User.TenantID != "" {
			out.Header.Set(HeaderTenantID, session.User.TenantID)
		}
	}
	return m.httpClient.Do(out)
}

// replayableBody returns a function producing a fresh copy of the request
// body, or nil when there is no body.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "buffer request body")
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))
	_ = resp.Body.Close()
}
