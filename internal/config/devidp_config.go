package config

import "time"

// DevIdPConfig configures the development identity provider and the account
// it seeds at startup.
type DevIdPConfig interface {
	// GetSigningSecret returns the HMAC secret. Empty means sign with a
	// generated RSA key and publish it as a JWKS.
	GetSigningSecret() string
	GetAccessTokenTTL() time.Duration
	GetSeedUsername() string
	GetSeedPassword() string
	GetSeedTenantCode() string
	GetSeedTenantName() string
}

type DevIdPVars struct {
	SigningSecret  string        `env:"DEVIDP_SIGNING_SECRET"`
	AccessTokenTTL time.Duration `env:"DEVIDP_ACCESS_TTL" envDefault:"15m"`
	SeedUsername   string        `env:"DEVIDP_USERNAME" envDefault:"demo"`
	SeedPassword   string        `env:"DEVIDP_PASSWORD" envDefault:"demo-password"`
	SeedTenantCode string        `env:"DEVIDP_TENANT_CODE" envDefault:"ACME"`
	SeedTenantName string        `env:"DEVIDP_TENANT_NAME" envDefault:"Acme Corporation"`
}

var _ DevIdPConfig = DevIdPVars{}

func (d DevIdPVars) GetSigningSecret() string {
	return d.SigningSecret
}

func (d DevIdPVars) GetAccessTokenTTL() time.Duration {
	return d.AccessTokenTTL
}

func (d DevIdPVars) GetSeedUsername() string {
	return d.SeedUsername
}

func (d DevIdPVars) GetSeedPassword() string {
	return d.SeedPassword
}

func (d DevIdPVars) GetSeedTenantCode() string {
	return d.SeedTenantCode
}

func (d DevIdPVars) GetSeedTenantName() string {
	return d.SeedTenantName
}
