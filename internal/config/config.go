package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	PortalConfig
	RoutesConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
	GetOtelEndpoint() string
}

type PortalConfig interface {
	GetPortalURL() string
	GetPortalTimeout() time.Duration
}

type RoutesConfig interface {
	GetLoginPath() string
	GetErrorPath() string
}

type mainConfig struct {
	EnvVars
	Portal
	Routes
	Security
}

// New loads the configuration from environment variables, applying defaults for anything unset.
func New() (Config, error) {
	var cfg mainConfig
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
