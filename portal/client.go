package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/go-signin-bridge/internal/errors"
	"github.com/jrsteele09/go-signin-bridge/internal/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	validatePath  = "/oidc/validate"
	authorizePath = "/oidc/authorize"

	contentTypeJSON = "application/json"
	maxBodyBytes    = 1 << 20
)

// Client talks to the Portal, the backend that owns clients, proofs and token issuance.
// Every call is bounded by the client timeout and by the caller's context. Nothing is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for Portal failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records every round trip.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a Client for the Portal API rooted at baseURL (e.g. "https://portal.example.com/api/v1").
func New(baseURL string, timeout time.Duration, options ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zerolog.Nop(),
		tracer:     otel.Tracer("github.com/jrsteele09/go-signin-bridge/portal"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// ValidateClient checks that the client exists and that the redirect_uri is registered for it.
// A non-2xx answer is returned as *Error; a network failure or timeout wraps ErrPortalUnavailable.
func (c *Client) ValidateClient(ctx context.Context, req ValidateRequest) error {
	resp, err := c.postJSON(ctx, validatePath, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

// Authorize submits the user's proof and returns the requested code and tokens.
func (c *Client) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResponse, error) {
	resp, err := c.postJSON(ctx, authorizePath, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out AuthorizeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		c.logger.Error().Err(err).Str("path", authorizePath).Int("status", resp.StatusCode).Msg("Failed to decode Portal response")
		return nil, apperrors.Wrapf(err, "[portal.Client Authorize] decode: %w", apperrors.ErrPortalResponse)
	}
	return &out, nil
}

// Forward sends a request to the Portal as is and returns the raw response, whatever its status.
// The caller must close the response body.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "portal.Forward", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("portal.path", path), attribute.String("http.request.method", method)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, apperrors.Wrapf(err, "[portal.Client Forward] new request")
	}
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeJSON
	}
	req.Header.Set("Content-Type", contentType)
	if auth := header.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	return c.do(req, path, span)
}

// postJSON sends body to path and returns the response only when it is 2xx.
func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[portal.Client postJSON] marshal")
	}

	ctx, span := c.tracer.Start(ctx, "portal.POST "+path, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("portal.path", path)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, apperrors.Wrapf(err, "[portal.Client postJSON] new request")
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.do(req, path, span)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	portalErr := &Error{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err := json.Unmarshal(raw, portalErr); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Int("status", resp.StatusCode).Msg("Portal error body is not JSON")
	}
	portalErr.Status = resp.StatusCode

	span.SetStatus(codes.Error, portalErr.Error())
	event := c.logger.Warn()
	if portalErr.ServerSide() {
		event = c.logger.Error()
	}
	event.Str("path", path).Int("status", resp.StatusCode).Str("code", portalErr.Code).Msg("Portal request failed")
	return nil, portalErr
}

// do runs req and records the round trip. Transport failures, including timeouts and
// cancellation, wrap ErrPortalUnavailable.
func (c *Client) do(req *http.Request, path string, span trace.Span) (*http.Response, error) {
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObservePortalRequest(path, 0, start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unavailable")
		c.logger.Error().Err(err).Str("path", path).Msg("Portal unreachable")
		return nil, apperrors.Wrapf(err, "[portal.Client] %s %s: %w", req.Method, path, apperrors.ErrPortalUnavailable)
	}
	c.metrics.ObservePortalRequest(path, resp.StatusCode, start)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}
