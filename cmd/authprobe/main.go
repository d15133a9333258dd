// Command authprobe drives a session manager against an identity provider:
// it optionally logs in, sends one authorized request and reports the
// session state. The session is persisted by the configured store, so
// repeated runs exercise restore and renewal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-auth-session/auth"
	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/jrsteele09/go-auth-session/internal/config"
	"github.com/jrsteele09/go-auth-session/metrics"
	"github.com/jrsteele09/go-auth-session/sessions"
	"github.com/jrsteele09/go-auth-session/sessions/redisstore"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type probeFlags struct {
	username    string
	password    string
	tenantCode  string
	target      string
	logout      bool
	tenantHdr   bool
	showMetrics bool
}

func main() {
	var f probeFlags
	flag.StringVar(&f.username, "username", "", "log in as this user before the request")
	flag.StringVar(&f.password, "password", "", "password for -username")
	flag.StringVar(&f.tenantCode, "tenant", "", "tenant code for -username")
	flag.StringVar(&f.target, "url", "", "URL to GET with the session's access token (default AUTH_BASE_URL/api/me)")
	flag.BoolVar(&f.tenantHdr, "tenant-header", false, "send the session's tenant id as X-Tenant-ID")
	flag.BoolVar(&f.logout, "logout", false, "log out after the request")
	flag.BoolVar(&f.showMetrics, "metrics", false, "print session metrics on exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil {
		log.Fatal().Err(err).Msg("authprobe failed")
	}
}

func run(ctx context.Context, f probeFlags) error {
	c, err := config.New()
	if err != nil {
		return err
	}
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	store, closeStore, err := newStore(c)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := &http.Client{Timeout: c.GetRequestTimeout()}
	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheus(registry, "authprobe")
	if err != nil {
		return err
	}

	opts := []auth.SessionManagerOption{
		auth.WithLogger(log.Logger),
		auth.WithHTTPClient(httpClient),
		auth.WithMetrics(recorder),
		auth.WithRefreshThreshold(c.GetRefreshThreshold()),
		auth.WithRefreshTimeout(c.GetRefreshTimeout()),
	}
	if f.tenantHdr {
		opts = append(opts, auth.WithTenantHeader())
	}
	if jwksURL := c.GetJWKSURL(); jwksURL != "" {
		opts = append(opts, auth.WithVerifier(token.NewRemoteVerifier(ctx, jwksURL)))
	}

	manager, err := auth.NewSessionManager(ctx, identity.NewClient(c.GetAuthBaseURL(), httpClient), store, opts...)
	if err != nil {
		return err
	}
	defer manager.Close()

	if f.username != "" {
		session, err := manager.Login(ctx, identity.Credentials{
			Username:   f.username,
			Password:   f.password,
			TenantCode: f.tenantCode,
		})
		if err != nil {
			return errors.Wrap(err, "login")
		}
		log.Info().Str("user", session.User.Username).Str("tenant_code", session.User.TenantCode).Msg("Logged in")
	}

	target := f.target
	if target == "" {
		target = c.GetAuthBaseURL() + "/api/me"
	}
	if err := probe(ctx, manager, target); err != nil {
		return err
	}

	if f.logout {
		manager.Logout(ctx)
	}
	fmt.Printf("session state: %s\n", manager.State())

	if f.showMetrics {
		return printMetrics(registry)
	}
	return nil
}

func newStore(c config.StoreConfig) (sessions.Store, func(), error) {
	switch c.GetSessionStore() {
	case config.StoreMemory:
		return sessions.NewMemoryStore(), func() {}, nil
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Err(err).Msg("Close redis client")
			}
		}
		return redisstore.New(rdb, c.GetRedisKey(), c.GetRedisTTL()), closeFn, nil
	default:
		return sessions.NewFileStore(c.GetSessionFile()), func() {}, nil
	}
}

func probe(ctx context.Context, manager *auth.SessionManager, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := manager.AuthorizedRequest(req)
	if err != nil {
		return errors.Wrap(err, "authorized request")
	}
	defer resp.Body.Close()

	fmt.Printf("%s %s\n", resp.Status, target)
	_, err = io.Copy(os.Stdout, io.LimitReader(resp.Body, 64<<10))
	fmt.Println()
	return err
}

func printMetrics(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	encoder := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return errors.Wrap(err, "encode metrics")
		}
	}
	return nil
}
