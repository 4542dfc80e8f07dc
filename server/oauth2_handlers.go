package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-signin-bridge/internal/utils"
	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/rs/zerolog/hlog"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"

	maxProxyBodyBytes = 1 << 20
)

// CORS headers set by the Portal that are passed through to the caller.
var proxyCORSHeaders = []string{
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Methods",
	"Access-Control-Allow-Headers",
}

// WellKnownOpenIDConfig serves the OIDC discovery document
func (s *Server) WellKnownOpenIDConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.config.GetBaseURL()

		resp := map[string]any{
			"issuer":                 baseURL,
			"authorization_endpoint": baseURL + RouteAuthorize,
			"token_endpoint":         baseURL + RouteToken,
			"userinfo_endpoint":      baseURL + RouteUserInfo,
			"jwks_uri":               baseURL + RouteJWKS,
			"introspection_endpoint": baseURL + RouteIntrospect,

			"scopes_supported": oauthmodel.SupportedScopes,
			"response_types_supported": []string{
				"code",           // Authorization code flow
				"id_token",       // Implicit flow
				"id_token token", // Implicit flow
				"code id_token",  // Hybrid flow
			},
			"response_modes_supported": []string{
				string(oauthmodel.QueryResponseMode),
				string(oauthmodel.FragmentResponseMode),
				string(oauthmodel.FormPostResponseMode),
			},
			"grant_types_supported":            []string{"authorization_code", "implicit"},
			"code_challenge_methods_supported": []string{string(oauthmodel.CodeMethodTypeS256)},

			// Tokens are signed by the Portal
			"id_token_signing_alg_values_supported": []string{"RS256"},
			// Subjects are unique per application
			"subject_types_supported": []string{"pairwise"},
		}

		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		writeJSON(w, http.StatusOK, resp)
	}
}

// PortalProxy forwards an OIDC request to the Portal. Not found and server side failures are
// answered with a generic body; anything else is passed through with its status.
func (s *Server) PortalProxy(route string) http.HandlerFunc {
	portalPath := portalProxyPaths[route]
	return func(w http.ResponseWriter, r *http.Request) {
		logger := hlog.FromRequest(r).With().Str("route", route).Logger()

		var body io.Reader
		if r.Method == http.MethodPost {
			body = http.MaxBytesReader(w, r.Body, maxProxyBodyBytes)
		}
		resp, err := s.portal.Forward(r.Context(), r.Method, portalPath, r.URL.Query(), r.Header, body)
		if err != nil {
			logger.Error().Err(err).Msg("Portal proxy request failed")
			s.metrics.IncrementProxyRequest(route, http.StatusInternalServerError)
			writeOAuthError(w, http.StatusInternalServerError, oauthmodel.ServerError())
			return
		}
		defer resp.Body.Close()
		s.metrics.IncrementProxyRequest(route, resp.StatusCode)

		switch {
		case resp.StatusCode == http.StatusNotFound:
			writeJSON(w, http.StatusNotFound, map[string]string{"code": oauthmodel.ErrorCodeNotFound})
			return
		case resp.StatusCode >= http.StatusInternalServerError:
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxProxyBodyBytes))
			logger.Error().Int("status", resp.StatusCode).Str("body", string(detail)).Msg("Portal returned a server error")
			writeOAuthError(w, http.StatusInternalServerError, oauthmodel.ServerError())
			return
		}

		for _, header := range proxyCORSHeaders {
			if v := resp.Header.Get(header); v != "" {
				w.Header().Set(header, v)
			}
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = contentTypeJSON
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, io.LimitReader(resp.Body, maxProxyBodyBytes))
	}
}

// errorResponse carries both the bridge's error fields and their OAuth 2.0 names.
type errorResponse struct {
	Code             string  `json:"code"`
	Detail           string  `json:"detail"`
	Attribute        *string `json:"attribute"`
	Error            string  `json:"error"`
	ErrorDescription string  `json:"error_description"`
}

// writeOAuthError writes an OAuth2 error response
func writeOAuthError(w http.ResponseWriter, statusCode int, oauthErr *oauthmodel.Error) {
	resp := errorResponse{
		Code:             oauthErr.Code,
		Detail:           oauthErr.Detail,
		Error:            oauthErr.Code,
		ErrorDescription: oauthErr.Detail,
	}
	if oauthErr.Attribute != "" {
		resp.Attribute = utils.Ptr(oauthErr.Attribute)
	}
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
