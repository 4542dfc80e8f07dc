package redirect_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/go-signin-bridge/internal/errors"
	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/jrsteele09/go-signin-bridge/redirect"
	"github.com/stretchr/testify/require"
)

func testParams() redirect.Params {
	var p redirect.Params
	p.Add("code", "abc 123")
	p.Add("id_token", "a.b.c")
	p.Add("state", "s/1")
	return p
}

func TestQueryURL(t *testing.T) {
	t.Run("appends to empty query", func(t *testing.T) {
		got, err := redirect.QueryURL("https://app.test/cb", testParams())
		require.NoError(t, err)
		require.Equal(t, "https://app.test/cb?code=abc+123&id_token=a.b.c&state=s%2F1", got)
	})

	t.Run("keeps existing query and fragment", func(t *testing.T) {
		got, err := redirect.QueryURL("https://app.test/cb?tenant=x#section", testParams())
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		require.Equal(t, "x", u.Query().Get("tenant"))
		require.Equal(t, "abc 123", u.Query().Get("code"))
		require.Equal(t, "s/1", u.Query().Get("state"))
		require.Equal(t, "section", u.Fragment)
		require.True(t, strings.HasPrefix(u.RawQuery, "tenant=x&code="))
	})

	t.Run("relative target", func(t *testing.T) {
		_, err := redirect.QueryURL("/cb", testParams())
		require.ErrorIs(t, err, apperrors.ErrInvalidRedirectURI)
	})
}

func TestFragmentURL(t *testing.T) {
	t.Run("replaces fragment and keeps query", func(t *testing.T) {
		got, err := redirect.FragmentURL("https://app.test/cb?tenant=x#old", testParams())
		require.NoError(t, err)
		require.Equal(t, "https://app.test/cb?tenant=x#code=abc+123&id_token=a.b.c&state=s%2F1", got)

		u, err := url.Parse(got)
		require.NoError(t, err)
		fragment, err := url.ParseQuery(u.Fragment)
		require.NoError(t, err)
		require.Equal(t, "abc 123", fragment.Get("code"))
		require.Equal(t, "s/1", fragment.Get("state"))
		require.Equal(t, "x", u.Query().Get("tenant"))
	})

	t.Run("no params", func(t *testing.T) {
		got, err := redirect.FragmentURL("https://app.test/cb#old", nil)
		require.NoError(t, err)
		require.Equal(t, "https://app.test/cb", got)
	})
}

func TestFormPostDocument(t *testing.T) {
	t.Run("escapes every value", func(t *testing.T) {
		var p redirect.Params
		p.Add("code", "c1")
		p.Add("state", `"><script>alert('x')</script>&`)

		doc, err := redirect.FormPostDocument("https://app.test/cb?a=1&b=2", p, "n0nce")
		require.NoError(t, err)
		html := string(doc)

		require.NotContains(t, html, "<script>alert")
		require.Contains(t, html, `value="&quot;&gt;&lt;script&gt;alert(&#39;x&#39;)&lt;&#x2F;script&gt;&amp;"`)
		require.Contains(t, html, `action="https:&#x2F;&#x2F;app.test&#x2F;cb?a=1&amp;b=2"`)
		require.Contains(t, html, `<input type="hidden" name="code" value="c1"/>`)
		require.Contains(t, html, `method="POST"`)
		require.Contains(t, html, `<script nonce="n0nce">`)
		require.Contains(t, html, "submit()")
		require.Contains(t, html, "<noscript>")
	})

	t.Run("keeps pair order", func(t *testing.T) {
		doc, err := redirect.FormPostDocument("https://app.test/cb", testParams(), "")
		require.NoError(t, err)
		html := string(doc)
		require.Less(t, strings.Index(html, `name="code"`), strings.Index(html, `name="id_token"`))
		require.Less(t, strings.Index(html, `name="id_token"`), strings.Index(html, `name="state"`))
		require.Contains(t, html, "<script>")
	})

	t.Run("relative target", func(t *testing.T) {
		_, err := redirect.FormPostDocument("cb", testParams(), "")
		require.ErrorIs(t, err, apperrors.ErrInvalidRedirectURI)
	})
}

func TestWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/authenticate", nil)

	t.Run("query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := redirect.Write(rec, req, redirect.Payload{
			RedirectURI:  "https://app.test/cb",
			ResponseMode: oauthmodel.QueryResponseMode,
			Params:       testParams(),
		}, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "https://app.test/cb?code=abc+123&id_token=a.b.c&state=s%2F1", rec.Header().Get("Location"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("fragment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := redirect.Write(rec, req, redirect.Payload{
			RedirectURI:  "https://app.test/cb",
			ResponseMode: oauthmodel.FragmentResponseMode,
			Params:       testParams(),
		}, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "https://app.test/cb#code=abc+123&id_token=a.b.c&state=s%2F1", rec.Header().Get("Location"))
	})

	t.Run("form_post", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := redirect.Write(rec, req, redirect.Payload{
			RedirectURI:  "https://app.test/cb",
			ResponseMode: oauthmodel.FormPostResponseMode,
			Params:       testParams(),
		}, "abc")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		require.Empty(t, rec.Header().Get("Location"))
		require.Contains(t, rec.Body.String(), `name="id_token" value="a.b.c"`)
	})

	t.Run("unknown mode writes nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := redirect.Write(rec, req, redirect.Payload{
			RedirectURI:  "https://app.test/cb",
			ResponseMode: "web_message",
			Params:       testParams(),
		}, "")
		require.ErrorIs(t, err, apperrors.ErrUnsupportedResponseMode)
		require.Empty(t, rec.Body.String())
		require.Empty(t, rec.Header())
	})
}

func TestParams(t *testing.T) {
	values := url.Values{
		"state":     {"xyz"},
		"client_id": {"app_1"},
		"nonce":     {""},
	}
	p := redirect.ParamsFromValues(values, "client_id", "nonce", "state")
	require.Equal(t, redirect.Params{{Key: "client_id", Value: "app_1"}, {Key: "state", Value: "xyz"}}, p)

	p.AddIfNotEmpty("ready", "")
	require.Len(t, p, 2)
}
