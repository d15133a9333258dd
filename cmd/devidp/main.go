// Command devidp runs the development identity provider with a single seeded
// account.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-session/internal/config"
	"github.com/jrsteele09/go-auth-session/server"
	"github.com/jrsteele09/go-auth-session/tenants"
	tenantrepofakes "github.com/jrsteele09/go-auth-session/tenants/repofakes"
	"github.com/jrsteele09/go-auth-session/token"
	"github.com/jrsteele09/go-auth-session/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-session/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const seedTenantID = "1"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	configureLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	signer, err := newSigner(c.GetSigningSecret())
	if err != nil {
		return err
	}

	userRepo, tenantRepo, err := seed(c)
	if err != nil {
		return err
	}

	idp, err := server.New(server.Options{
		Env:            c.GetEnv(),
		Signer:         signer,
		Users:          userRepo,
		Tenants:        tenantRepo,
		AccessTokenTTL: c.GetAccessTokenTTL(),
		AllowedOrigins: c.GetAllowedOrigins(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: idp}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(httpServer)
	})
	g.Go(func() error {
		<-ctx.Done()
		return shutdown(httpServer)
	})
	return g.Wait()
}

func configureLogging(env string) {
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newSigner signs with the HMAC secret when one is configured, otherwise with
// a fresh RSA key that is published on the JWKS route.
func newSigner(secret string) (token.Signer, error) {
	if secret != "" {
		return token.NewHMACSigner(secret), nil
	}
	keyPair, err := token.GenerateRSAKeyPair(uuid.NewString(), 2048)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	log.Info().Str("kid", keyPair.KeyID).Msg("Signing with generated RSA key")
	return token.NewKeyPairSigner(keyPair), nil
}

func seed(c config.DevIdPConfig) (*fakeuserrepo.FakeUserRepo, *tenantrepofakes.FakeTenantRepo, error) {
	tenantRepo := tenantrepofakes.NewFakeTenantRepo()
	tenant := &tenants.Tenant{ID: seedTenantID, Code: c.GetSeedTenantCode(), Name: c.GetSeedTenantName()}
	if err := tenantRepo.Upsert(tenant); err != nil {
		return nil, nil, fmt.Errorf("seed tenant: %w", err)
	}

	hash, err := users.HashPassword(c.GetSeedPassword(), 0)
	if err != nil {
		return nil, nil, fmt.Errorf("hash seed password: %w", err)
	}
	userRepo := fakeuserrepo.NewFakeUserRepo()
	err = userRepo.Upsert(&users.User{
		ID:           uuid.NewString(),
		Username:     c.GetSeedUsername(),
		PasswordHash: hash,
		Tenants: []users.TenantMembership{
			{TenantID: seedTenantID, Roles: []users.RoleType{users.RoleTenantAdmin}},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("seed user: %w", err)
	}

	log.Info().
		Str("username", c.GetSeedUsername()).
		Str("tenant_code", tenant.Code).
		Msg("Seeded account")
	return userRepo, tenantRepo, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
