package config

import (
	"strings"
	"time"
)

type Portal struct {
	URL     string        `env:"PORTAL_URL" envDefault:"https://developer.worldcoin.org/api/v1"`
	Timeout time.Duration `env:"PORTAL_TIMEOUT" envDefault:"10s"`
}

var _ PortalConfig = Portal{}

// GetPortalURL returns the Portal API root without a trailing slash.
func (p Portal) GetPortalURL() string {
	return strings.TrimSuffix(p.URL, "/")
}

func (p Portal) GetPortalTimeout() time.Duration {
	return p.Timeout
}
