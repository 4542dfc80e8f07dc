package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-signin-bridge/internal/errors"
	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/jrsteele09/go-signin-bridge/redirect"
	"github.com/rs/zerolog/hlog"
)

const (
	maxFormBytes = 64 << 10

	errorParamCode      = "code"
	errorParamDetail    = "detail"
	errorParamAttribute = "attribute"

	webOnlyCookie = "web-only"
)

// Authorize validates the request and sends the user to the login page to produce a proof.
// Failures are shown on the error page.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		req, err := s.auth.Authorize(r.Context(), query)
		if err != nil {
			s.redirectToError(w, r, err, query)
			return
		}

		var params redirect.Params
		params.Add(oauthmodel.ParamClientID, req.ClientID)
		params.Add(oauthmodel.ParamRedirectURI, req.RedirectURI)
		params.Add(oauthmodel.ParamScope, req.Scope)
		params.AddIfNotEmpty(oauthmodel.ParamState, req.State)
		params.Add(oauthmodel.ParamNonce, req.Nonce)
		params.AddIfNotEmpty(oauthmodel.ParamCodeChallenge, req.CodeChallenge)
		params.AddIfNotEmpty(oauthmodel.ParamCodeChallengeMethod, string(req.CodeChallengeMethod))
		params.Add(oauthmodel.ParamResponseMode, string(req.ResponseMode))
		params.Add(oauthmodel.ParamResponseType, string(req.ResponseType))
		// Keeps users from landing on the login page without a verified request
		params.Add(oauthmodel.ParamReady, "true")

		http.Redirect(w, r, withQuery(s.config.GetLoginPath(), params), http.StatusFound)
	}
}

// AuthorizeWeb marks the session as browser only and continues with Authorize.
func (s *Server) AuthorizeWeb() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     webOnlyCookie,
			Value:    "true",
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		})

		target := s.config.GetBaseURL() + RouteAuthorize
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// Authenticate receives the proof from the login page and delivers the Portal's response to the
// relying application.
func (s *Server) Authenticate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			hlog.FromRequest(r).Info().Err(err).Msg("Failed to parse authentication form")
			s.redirectToError(w, r, oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest, oauthmodel.DetailInvalidRequest, ""), nil)
			return
		}

		payload, err := s.auth.Authenticate(r.Context(), r.PostForm)
		if err != nil {
			s.redirectToError(w, r, err, r.PostForm)
			return
		}

		if err := redirect.Write(w, r, *payload, cspNonce(r.Context())); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to deliver authorization response")
			s.redirectToError(w, r, oauthmodel.ServerError(), r.PostForm)
		}
	}
}

// MobileAuthenticate is Authenticate for wallets posting JSON. The redirect target is returned
// in the body for the wallet to open.
func (s *Server) MobileAuthenticate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := decodeJSONValues(http.MaxBytesReader(w, r.Body, maxFormBytes))
		if err != nil {
			hlog.FromRequest(r).Info().Err(err).Msg("Failed to decode mobile authentication body")
			writeOAuthError(w, http.StatusBadRequest, oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest, oauthmodel.DetailInvalidRequest, ""))
			return
		}

		payload, err := s.auth.AuthenticateMobile(r.Context(), values)
		if err != nil {
			oauthErr := asOAuthError(err)
			status := http.StatusBadRequest
			if oauthErr.Code == oauthmodel.ErrorCodeServerError {
				status = http.StatusInternalServerError
			}
			writeOAuthError(w, status, oauthErr)
			return
		}

		location, err := payload.URL()
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to build mobile redirect")
			writeOAuthError(w, http.StatusInternalServerError, oauthmodel.ServerError())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{oauthmodel.ParamRedirectURI: location})
	}
}

// redirectToError sends the user to the error page with the failure and the original
// authorization parameters so the request can be retried. Proof material is never echoed.
func (s *Server) redirectToError(w http.ResponseWriter, r *http.Request, err error, values url.Values) {
	oauthErr := asOAuthError(err)

	var params redirect.Params
	params.Add(errorParamCode, oauthErr.Code)
	params.Add(errorParamDetail, oauthErr.Detail)
	params.AddIfNotEmpty(errorParamAttribute, oauthErr.Attribute)
	params = append(params, redirect.ParamsFromValues(values, oauthmodel.AuthorizationParamNames...)...)

	http.Redirect(w, r, withQuery(s.config.GetErrorPath(), params), http.StatusSeeOther)
}

func asOAuthError(err error) *oauthmodel.Error {
	var oauthErr *oauthmodel.Error
	if errors.As(err, &oauthErr) {
		return oauthErr
	}
	return oauthmodel.ServerError()
}

// withQuery appends params to target, which may be a path or an absolute URL.
func withQuery(target string, params redirect.Params) string {
	encoded := params.Encode()
	if encoded == "" {
		return target
	}
	if strings.Contains(target, "?") {
		return target + "&" + encoded
	}
	return target + "?" + encoded
}

// decodeJSONValues reads a flat JSON object into url.Values. Strings, numbers and booleans are
// kept; nested values are dropped.
func decodeJSONValues(body io.Reader) (url.Values, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.Wrapf(err, "[decodeJSONValues] %w", apperrors.ErrInvalidRequestBody)
	}

	values := url.Values{}
	for key, v := range raw {
		switch value := v.(type) {
		case string:
			values.Set(key, value)
		case json.Number:
			values.Set(key, value.String())
		case bool:
			values.Set(key, fmt.Sprint(value))
		}
	}
	return values, nil
}
