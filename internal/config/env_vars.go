package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port         string `env:"PORT" envDefault:"8080"`
	AppName      string `env:"APP_NAME" envDefault:"Sign In Bridge"`
	Env          string `env:"ENV" envDefault:"DEV"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	OtelEndpoint string `env:"OTEL_ENDPOINT"`
}

var _ EnvConfig = EnvVars{}

// GetPort returns the listen address, e.g. ":8080".
func (e EnvVars) GetPort() string {
	port := e.Port
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetBaseURL returns the public URL of the bridge (e.g., "https://id.example.com").
// It is the issuer of the discovery document and the root of every advertised endpoint.
func (e EnvVars) GetBaseURL() string {
	return strings.TrimSuffix(e.BaseURL, "/")
}

// GetOtelEndpoint returns the OTLP/HTTP trace endpoint. Tracing is off when empty.
func (e EnvVars) GetOtelEndpoint() string {
	return e.OtelEndpoint
}
