package redirect

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-signin-bridge/internal/errors"
	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Payload is the result delivered to a relying application's redirect_uri.
// It is built right before encoding and consumed once.
type Payload struct {
	RedirectURI  string
	ResponseMode oauthmodel.ResponseModeType
	Params       Params
}

// URL returns the redirect location for the query and fragment response modes.
func (p Payload) URL() (string, error) {
	switch p.ResponseMode {
	case oauthmodel.QueryResponseMode:
		return QueryURL(p.RedirectURI, p.Params)
	case oauthmodel.FragmentResponseMode:
		return FragmentURL(p.RedirectURI, p.Params)
	}
	return "", fmt.Errorf("[redirect Payload.URL] %q has no redirect location: %w", p.ResponseMode, apperrors.ErrUnsupportedResponseMode)
}

// Write delivers the payload using its response mode: a 303 redirect for query and fragment,
// or an auto-submitting form for form_post. scriptNonce is added to the form's inline script
// so it runs under a nonce based Content-Security-Policy; it may be empty.
// Nothing is written when an error is returned.
func Write(w http.ResponseWriter, r *http.Request, p Payload, scriptNonce string) error {
	switch p.ResponseMode {
	case oauthmodel.QueryResponseMode, oauthmodel.FragmentResponseMode:
		location, err := p.URL()
		if err != nil {
			return err
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, location, http.StatusSeeOther)
		return nil

	case oauthmodel.FormPostResponseMode:
		doc, err := FormPostDocument(p.RedirectURI, p.Params, scriptNonce)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
		return nil
	}
	return fmt.Errorf("[redirect Write] %q: %w", p.ResponseMode, apperrors.ErrUnsupportedResponseMode)
}

// QueryURL appends params to the query component of target. Existing query parameters and the
// fragment are kept.
func QueryURL(target string, params Params) (string, error) {
	u, err := parseTarget(target)
	if err != nil {
		return "", err
	}
	if encoded := params.Encode(); encoded != "" {
		if u.RawQuery == "" {
			u.RawQuery = encoded
		} else {
			u.RawQuery += "&" + encoded
		}
	}
	return u.String(), nil
}

// FragmentURL replaces the fragment of target with the form-urlencoded params. The query is kept.
func FragmentURL(target string, params Params) (string, error) {
	u, err := parseTarget(target)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.RawFragment = ""
	location := u.String()
	if encoded := params.Encode(); encoded != "" {
		location += "#" + encoded
	}
	return location, nil
}

func parseTarget(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[redirect parseTarget] %w", apperrors.ErrInvalidRedirectURI)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("[redirect parseTarget] %q is not absolute: %w", target, apperrors.ErrInvalidRedirectURI)
	}
	return u, nil
}

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&#39;",
	`/`, "&#x2F;",
)

// EscapeHTML escapes s for use inside HTML text or a quoted attribute value.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormPostDocument renders the OAuth 2.0 Form Post Response Mode document: a hidden form that
// POSTs params to target as soon as the page loads, with a manual button when scripts are off.
// Every interpolated value is escaped, including values that came from the client (state) or
// from the Portal. Values go through EscapeHTML, which also escapes '/'; html/template does not.
func FormPostDocument(target string, params Params, scriptNonce string) ([]byte, error) {
	if _, err := parseTarget(target); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Submit This Form</title>\n</head>\n<body>\n")
	sb.WriteString(`<form id="form_post" method="POST" action="`)
	sb.WriteString(EscapeHTML(target))
	sb.WriteString("\">\n")
	for _, kv := range params {
		sb.WriteString(`<input type="hidden" name="`)
		sb.WriteString(EscapeHTML(kv.Key))
		sb.WriteString(`" value="`)
		sb.WriteString(EscapeHTML(kv.Value))
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("<noscript><button type=\"submit\">Continue</button></noscript>\n</form>\n")
	sb.WriteString("<script")
	if scriptNonce != "" {
		sb.WriteString(` nonce="`)
		sb.WriteString(EscapeHTML(scriptNonce))
		sb.WriteString(`"`)
	}
	sb.WriteString(">window.addEventListener(\"load\", function () { document.getElementById(\"form_post\").submit(); });</script>\n")
	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}
