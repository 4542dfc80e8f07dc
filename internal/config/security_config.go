package config

type SecurityConfig interface {
	GetCSPEnabled() bool
	GetFrameAncestors() string
}

type Security struct {
	CSPEnabled     bool   `env:"CSP_ENABLED" envDefault:"true"`
	FrameAncestors string `env:"FRAME_ANCESTORS" envDefault:"'none'"`
}

var _ SecurityConfig = Security{}

// GetCSPEnabled reports whether responses carry a nonce based Content-Security-Policy.
func (s Security) GetCSPEnabled() bool {
	return s.CSPEnabled
}

func (s Security) GetFrameAncestors() string {
	return s.FrameAncestors
}
