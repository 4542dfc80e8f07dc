package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/jrsteele09/go-signin-bridge/redirect"
	"github.com/rs/zerolog/hlog"
)

type errorPageData struct {
	Code           string
	Detail         string
	Attribute      string
	DeveloperError bool
	RetryURL       string
}

// ErrorPage renders a failed authorization request. Developer errors show what to fix; user
// errors get a link back to the login page with the original request.
func (s *Server) ErrorPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		oauthErr := oauthmodel.NewError(query.Get(errorParamCode), query.Get(errorParamDetail), query.Get(errorParamAttribute))
		if oauthErr.Code == "" {
			oauthErr = oauthmodel.ServerError()
		}

		data := errorPageData{
			Code:           oauthErr.Code,
			Detail:         oauthErr.Detail,
			Attribute:      oauthErr.Attribute,
			DeveloperError: !oauthErr.IsUserError(),
		}
		if !data.DeveloperError && query.Get(oauthmodel.ParamClientID) != "" {
			retry := redirect.ParamsFromValues(query, oauthmodel.AuthorizationParamNames...)
			retry.Add(oauthmodel.ParamReady, "true")
			data.RetryURL = withQuery(s.config.GetLoginPath(), retry)
		}

		err := renderHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
			return s.errorPage.Execute(buf, data)
		})
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to render error page")
			http.Error(w, oauthmodel.DetailServerError, http.StatusInternalServerError)
		}
	}
}

func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOAuthError(w, http.StatusNotFound, oauthmodel.NewError(oauthmodel.ErrorCodeNotFound, "The requested resource was not found.", ""))
	}
}

func (s *Server) MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOAuthError(w, http.StatusMethodNotAllowed, oauthmodel.NewError(
			oauthmodel.ErrorCodeMethodNotAllowed,
			fmt.Sprintf("HTTP method '%s' is not allowed for this endpoint.", r.Method),
			"",
		))
	}
}

// renderHTML renders into a buffer first so a template failure never sends a partial page.
func renderHTML(w http.ResponseWriter, statusCode int, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(statusCode)
	_, _ = buf.WriteTo(w)
	return nil
}
