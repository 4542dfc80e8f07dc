package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-signin-bridge/auth"
	"github.com/jrsteele09/go-signin-bridge/internal/config"
	"github.com/jrsteele09/go-signin-bridge/internal/metrics"
	"github.com/jrsteele09/go-signin-bridge/portal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	router    chi.Router
	routes    []string
	config    config.Config
	auth      *auth.AuthorizationService
	portal    *portal.Client
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	errorPage *template.Template
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithLogger sets the base logger. Each request gets a child of it carrying the request id.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New wires the Portal client, the authorization service and every route.
func New(cfg config.Config, options ...Option) (*Server, error) {
	s := &Server{
		env:      cfg.GetEnv(),
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   zerolog.Nop(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = metrics.New(s.registry)

	s.portal = portal.New(cfg.GetPortalURL(), cfg.GetPortalTimeout(),
		portal.WithLogger(s.logger),
		portal.WithMetrics(s.metrics),
	)

	authService, err := auth.NewAuthorizationService(s.portal,
		auth.WithLogger(s.logger),
		auth.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create authorization service: %w", err)
	}
	s.auth = authService

	errorPage, err := ParseTemplate("error.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse error page: %w", err)
	}
	s.errorPage = errorPage

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterRouteFunc adds a handler for method and pattern and keeps track of it for logRoutes.
func (s *Server) RegisterRouteFunc(method, pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, method+" "+pattern)
	s.router.Method(method, pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		s.logger.Debug().Msgf("[%-19s] %s", colourMethod(parts[0]), parts[1])
	}
}
