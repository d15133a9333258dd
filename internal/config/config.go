package config

import (
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	StoreConfig
	DevIdPConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
}

type mainConfig struct {
	EnvVars
	Cors
	SessionVars
	StoreVars
	DevIdPVars
}

// New reads the configuration from the environment, after loading a .env
// file from the working directory when one exists.
func New() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "[config New] load .env")
	}

	c, err := env.ParseAs[mainConfig]()
	if err != nil {
		return nil, errors.Wrap(err, "[config New] parse environment")
	}
	if err := c.StoreVars.validate(); err != nil {
		return nil, errors.Wrap(err, "[config New]")
	}
	return c, nil
}
