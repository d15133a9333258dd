// Package refresh renews access tokens with at most one renewal in flight.
//
// Concurrent callers that discover an expiring token all join the same
// renewal and receive its result, so the identity endpoint sees one call and
// a rotating refresh token is never redeemed twice.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/jrsteele09/go-auth-session/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrRefreshFailed wraps every renewal failure. A failed renewal is terminal
// for the session that attempted it.
var ErrRefreshFailed = errors.New("token refresh failed")

// DefaultTimeout bounds a renewal when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Renewer performs the network call to the renewal endpoint.
type Renewer interface {
	Refresh(ctx context.Context, refreshToken string) (*identity.TokenResponse, error)
}

// CommitFunc persists a successful renewal. It runs once per renewal, inside
// the flight, before any waiting caller is released. An error fails the
// renewal for every caller.
type CommitFunc func(ctx context.Context, resp *identity.TokenResponse) error

type outcome struct {
	refreshToken string
	accessToken  string
	err          error
}

// Coordinator shares one renewal between every caller holding the same
// refresh token.
type Coordinator struct {
	renewer Renewer
	timeout time.Duration
	metrics metrics.Recorder
	log     zerolog.Logger
	group   singleflight.Group

	lock sync.Mutex
	last *outcome // last renewal that consumed its refresh token
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout bounds each renewal. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics sets the recorder for renewal outcomes.
func WithMetrics(m metrics.Recorder) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger sets the logger. The global zerolog logger is used otherwise.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// New creates a Coordinator that renews through renewer.
func New(renewer Renewer, opts ...Option) *Coordinator {
	c := &Coordinator{
		renewer: renewer,
		timeout: DefaultTimeout,
		metrics: metrics.Noop{},
		log:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh returns a new access token obtained with refreshToken.
//
// If a renewal with the same refresh token is already in flight the caller
// waits for it instead of starting another. The renewal runs detached from
// ctx and is bounded only by the coordinator's timeout. A caller that gives
// up gets ctx.Err() while the renewal carries on for everyone else.
//
// A caller presenting a refresh token that the previous renewal already
// redeemed (rotated away or had rejected) receives that renewal's outcome
// without a network call.
func (c *Coordinator) Refresh(ctx context.Context, refreshToken string, commit CommitFunc) (string, error) {
	if refreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token", ErrRefreshFailed)
	}
	if last, ok := c.settled(refreshToken); ok {
		c.metrics.RefreshShared()
		return last.accessToken, last.err
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(refreshToken, func() (any, error) {
		return c.renew(flightCtx, refreshToken, commit)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.RefreshShared()
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) renew(ctx context.Context, refreshToken string, commit CommitFunc) (string, error) {
	// A flight that starts just after the previous one settled must not
	// redeem the same token again.
	if last, ok := c.settled(refreshToken); ok {
		return last.accessToken, last.err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger := c.log.With().Str("flight_id", uuid.NewString()).Logger()
	logger.Debug().Msg("Renewing access token")

	start := time.Now()
	accessToken, rotated, err := c.exchange(ctx, refreshToken, commit)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.RefreshCompleted(metrics.OutcomeFailure, elapsed)
		c.remember(&outcome{refreshToken: refreshToken, err: err})
		logger.Err(err).Dur("elapsed", elapsed).Msg("Token refresh failed")
		return "", err
	}

	c.metrics.RefreshCompleted(metrics.OutcomeSuccess, elapsed)
	if rotated {
		c.remember(&outcome{refreshToken: refreshToken, accessToken: accessToken})
	} else {
		// The token is still redeemable, later renewals must go to the network.
		c.remember(nil)
	}
	logger.Debug().Dur("elapsed", elapsed).Bool("rotated", rotated).Msg("Access token renewed")
	return accessToken, nil
}

func (c *Coordinator) exchange(ctx context.Context, refreshToken string, commit CommitFunc) (string, bool, error) {
	resp, err := c.renewer.Refresh(ctx, refreshToken)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if commit != nil {
		if err := commit(ctx, resp); err != nil {
			return "", false, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
	}
	rotated := resp.RefreshToken != "" && resp.RefreshToken != refreshToken
	return resp.AccessToken, rotated, nil
}

func (c *Coordinator) settled(refreshToken string) (outcome, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.last == nil || c.last.refreshToken != refreshToken {
		return outcome{}, false
	}
	return *c.last, true
}

func (c *Coordinator) remember(o *outcome) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.last = o
}
