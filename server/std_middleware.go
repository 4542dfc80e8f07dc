package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const headerRequestID = "X-Request-Id"

type cspNonceKey struct{}

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// HTMLMiddleWare is the stack for routes a browser navigates to.
func (s *Server) HTMLMiddleWare(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.FrameSecurityMiddleware,
		s.ContentSecurityMiddleware,
	}
	chainedMiddleWare = append(chainedMiddleWare, mw...)
	return chainedMiddleWare
}

// APIMiddleware is the stack for JSON routes.
func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.NoStoreMiddleware,
	}
}

// RequestIDMiddleware tags the response and the request logger with a fresh request id.
// It must run after hlog.NewHandler.
func (s *Server) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(headerRequestID, id)
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(r *http.Request, status, size int, duration time.Duration) {
	event := hlog.FromRequest(r).Info()
	if s.env == "DEV" {
		event = event.Str("method", colourMethod(r.Method))
	} else {
		event = event.Str("method", r.Method)
	}
	// Only the path: query strings carry state and nonce values.
	event.Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request")
}

// RecoverMiddleware turns a panic into a 500 server_error so nothing internal reaches the caller.
func (s *Server) RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic")
			writeOAuthError(w, http.StatusInternalServerError, oauthmodel.ServerError())
		}()
		next.ServeHTTP(w, r)
	})
}

// FrameSecurityMiddleware prevents the pages from being embedded on other sites.
func (s *Server) FrameSecurityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch s.config.GetFrameAncestors() {
		case "'none'":
			w.Header().Set("X-Frame-Options", "DENY")
		case "'self'":
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		}
		next(w, r)
	}
}

// ContentSecurityMiddleware sets a Content-Security-Policy whose script-src only allows scripts
// carrying a per-request nonce. Handlers read the nonce with cspNonce.
func (s *Server) ContentSecurityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frameAncestors := "frame-ancestors " + s.config.GetFrameAncestors()
		if !s.config.GetCSPEnabled() {
			w.Header().Set("Content-Security-Policy", frameAncestors)
			next(w, r)
			return
		}

		nonce := uuid.NewString()
		w.Header().Set("Content-Security-Policy", strings.Join([]string{
			"default-src 'self'",
			fmt.Sprintf("script-src 'self' 'nonce-%s' 'strict-dynamic'", nonce),
			"style-src 'self' 'unsafe-inline'",
			"form-action *",
			frameAncestors,
		}, "; "))
		next(w, r.WithContext(context.WithValue(r.Context(), cspNonceKey{}, nonce)))
	}
}

// NoStoreMiddleware keeps responses carrying codes and tokens out of caches.
func (s *Server) NoStoreMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		next(w, r)
	}
}

// cspNonce returns the script nonce set by ContentSecurityMiddleware, or "" when CSP is off.
func cspNonce(ctx context.Context) string {
	nonce, _ := ctx.Value(cspNonceKey{}).(string)
	return nonce
}
