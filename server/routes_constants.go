package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Authorization Routes
	RouteAuthorize    = "/authorize"
	RouteAuthorizeWeb = "/authorize-web"
	RouteAuthenticate = "/authenticate"
	RouteMobileAuth   = "/v1/mobile-auth"

	// OIDC Routes answered by the Portal
	RouteWellKnownOpenIDConfig = "/.well-known/openid-configuration"
	RouteToken                 = "/token"
	RouteIntrospect            = "/introspect"
	RouteUserInfo              = "/userinfo"
	RouteJWKS                  = "/jwks.json"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"
)

// Portal paths the OIDC routes are forwarded to, relative to the Portal API root.
var portalProxyPaths = map[string]string{
	RouteToken:      "/oidc/token",
	RouteIntrospect: "/oidc/introspect",
	RouteUserInfo:   "/oidc/userinfo",
	RouteJWKS:       "/jwks",
}
