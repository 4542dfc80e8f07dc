package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
)

func (s *Server) initRoutes() {
	s.router.Use(
		hlog.NewHandler(s.logger),
		s.RequestIDMiddleware,
		hlog.AccessHandler(s.accessLog),
		s.RecoverMiddleware,
	)
	s.router.NotFound(s.NotFound())
	s.router.MethodNotAllowed(s.MethodNotAllowed())

	// Authorization flow
	s.RegisterRouteFunc(http.MethodGet, RouteAuthorize, ChainMiddleware(s.Authorize(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc(http.MethodGet, RouteAuthorizeWeb, ChainMiddleware(s.AuthorizeWeb(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc(http.MethodPost, RouteAuthenticate, ChainMiddleware(s.Authenticate(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc(http.MethodPost, RouteMobileAuth, ChainMiddleware(s.MobileAuthenticate(), s.APIMiddleware()...))

	// OIDC routes; everything but discovery is answered by the Portal
	s.RegisterRouteFunc(http.MethodGet, RouteWellKnownOpenIDConfig, s.WellKnownOpenIDConfig())
	for _, route := range []string{RouteToken, RouteIntrospect, RouteUserInfo} {
		s.RegisterRouteFunc(http.MethodGet, route, ChainMiddleware(s.PortalProxy(route), s.APIMiddleware()...))
		s.RegisterRouteFunc(http.MethodPost, route, ChainMiddleware(s.PortalProxy(route), s.APIMiddleware()...))
	}
	s.RegisterRouteFunc(http.MethodGet, RouteJWKS, ChainMiddleware(s.PortalProxy(RouteJWKS), s.APIMiddleware()...))

	// The error page is only served here when ERROR_PATH is local
	if errorPath := s.config.GetErrorPath(); strings.HasPrefix(errorPath, "/") {
		s.RegisterRouteFunc(http.MethodGet, errorPath, ChainMiddleware(s.ErrorPage(), s.HTMLMiddleWare()...))
	}

	s.RegisterRouteFunc(http.MethodGet, RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	s.RegisterRouteFunc(http.MethodGet, RouteHealth, s.Health())
}
