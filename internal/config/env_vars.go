package config

import "strings"

type EnvVars struct {
	Env     string `env:"ENV" envDefault:"DEV"`
	AppName string `env:"APP_NAME" envDefault:"Go Auth Session"`
	Port    string `env:"PORT" envDefault:"8081"`
}

var _ EnvConfig = EnvVars{}

// GetPort returns the listen address, e.g. ":8081".
func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return ":" + e.Port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}
