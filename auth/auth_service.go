package auth

//go:generate mockgen -source=auth_service.go -destination=mocks/portal_mock.go -package=mocks Portal

import (
	"context"
	"errors"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-signin-bridge/internal/metrics"
	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/jrsteele09/go-signin-bridge/portal"
	"github.com/jrsteele09/go-signin-bridge/redirect"
	"github.com/rs/zerolog"
)

// Portal is the authorization backend: it owns client registration, proof verification
// and token issuance.
type Portal interface {
	ValidateClient(ctx context.Context, req portal.ValidateRequest) error
	Authorize(ctx context.Context, req portal.AuthorizeRequest) (*portal.AuthorizeResponse, error)
}

// Stage is where a request is in the authorization flow. Nothing is kept between requests,
// so a stage only lives for the duration of one call.
type Stage string

const (
	StageValidating                 Stage = "validating"
	StageAwaitingExternalValidation Stage = "awaiting_external_validation"
	StageAwaitingUserProof          Stage = "awaiting_user_proof"
	StageExchanging                 Stage = "exchanging"
	StageCompleted                  Stage = "completed"
	StageFailed                     Stage = "failed"
)

// Endpoint labels used for logs and metrics.
const (
	EndpointAuthorize    = "authorize"
	EndpointAuthenticate = "authenticate"
	EndpointMobile       = "mobile_auth"
)

// AuthorizationService drives an authorization request from validation to the payload delivered
// to the relying application. It holds no per-request state and is safe for concurrent use.
type AuthorizationService struct {
	validator *Validator
	portal    Portal
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	newNonce  func() string
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithLogger sets the logger used when no request scoped logger is on the context.
func WithLogger(logger zerolog.Logger) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.logger = logger
	}
}

// WithMetrics records the outcome of every request.
func WithMetrics(m *metrics.Metrics) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.metrics = m
	}
}

// WithNonceGenerator sets the nonce generator (primarily for testing)
func WithNonceGenerator(newNonce func() string) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.newNonce = newNonce
	}
}

// NewAuthorizationService initializes a new AuthorizationService.
func NewAuthorizationService(p Portal, options ...AuthorizationServiceOption) (*AuthorizationService, error) {
	if p == nil {
		return nil, errors.New("[NewAuthorizationService] portal is required")
	}

	as := &AuthorizationService{
		validator: NewValidator(),
		portal:    p,
		logger:    zerolog.Nop(),
		newNonce:  uuid.NewString,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Authorize validates an inbound authorization request and confirms with the Portal that the
// client and redirect_uri are registered. On success the request is ready for the user's proof;
// a nonce is generated when the client did not send one.
// Every returned error is an *oauthmodel.Error.
func (as *AuthorizationService) Authorize(ctx context.Context, values url.Values) (*oauthmodel.AuthorizationRequest, error) {
	logger := as.requestLogger(ctx, EndpointAuthorize)

	stage := StageValidating
	req, err := as.validator.ValidateAuthorize(values)
	if err != nil {
		return nil, as.fail(logger, EndpointAuthorize, stage, asOAuthError(err))
	}
	logger = logger.With().Str("client_id", req.ClientID).Str("flow", string(req.Flow)).Logger()

	stage = as.advance(logger, StageAwaitingExternalValidation)
	err = as.portal.ValidateClient(ctx, portal.ValidateRequest{
		AppID:       req.ClientID,
		RedirectURI: req.RedirectURI,
	})
	if err != nil {
		return nil, as.fail(logger, EndpointAuthorize, stage, validateClientError(logger, err))
	}

	if req.Nonce == "" {
		req.Nonce = as.newNonce()
	}

	stage = as.advance(logger, StageAwaitingUserProof)
	as.metrics.IncrementAuthorizationOutcome(EndpointAuthorize, string(stage), "")
	return req, nil
}

// Authenticate validates a request completed with the user's proof, exchanges the proof with the
// Portal and builds the payload for the relying application.
// Every returned error is an *oauthmodel.Error.
func (as *AuthorizationService) Authenticate(ctx context.Context, values url.Values) (*redirect.Payload, error) {
	return as.authenticate(ctx, EndpointAuthenticate, values)
}

// AuthenticateMobile is Authenticate for wallets that post the proof directly. They cannot
// receive form_post responses.
func (as *AuthorizationService) AuthenticateMobile(ctx context.Context, values url.Values) (*redirect.Payload, error) {
	return as.authenticate(ctx, EndpointMobile, values)
}

func (as *AuthorizationService) authenticate(ctx context.Context, endpoint string, values url.Values) (*redirect.Payload, error) {
	logger := as.requestLogger(ctx, endpoint)

	stage := StageValidating
	req, err := as.validator.ValidateAuthenticate(values)
	if err != nil {
		return nil, as.fail(logger, endpoint, stage, asOAuthError(err))
	}
	if endpoint == EndpointMobile && req.ResponseMode == oauthmodel.FormPostResponseMode {
		return nil, as.fail(logger, endpoint, stage, oauthmodel.NewError(
			oauthmodel.ErrorCodeInvalidResponseMode,
			"This response mode is not valid for mobile authentication.",
			oauthmodel.ParamResponseMode,
		))
	}
	logger = logger.With().Str("client_id", req.ClientID).Str("flow", string(req.Flow)).Logger()

	stage = as.advance(logger, StageExchanging)
	resp, err := as.portal.Authorize(ctx, portal.AuthorizeRequest{
		Proof:               req.Proof,
		Scope:               req.Scope,
		MerkleRoot:          req.MerkleRoot,
		RedirectURI:         req.RedirectURI,
		ResponseType:        string(req.ResponseType),
		Signal:              req.Nonce,
		NullifierHash:       req.NullifierHash,
		VerificationLevel:   req.VerificationLevel,
		AppID:               req.ClientID,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: string(req.CodeChallengeMethod),
	})
	if err != nil {
		return nil, as.fail(logger, endpoint, stage, authorizeError(logger, err))
	}
	if err := checkAuthorizeResponse(req.AuthorizationRequest, resp); err != nil {
		logger.Error().Err(err).Msg("Portal returned an unusable authorization response")
		return nil, as.fail(logger, endpoint, stage, oauthmodel.ServerError())
	}

	var params redirect.Params
	params.AddIfNotEmpty(oauthmodel.ParamCode, resp.Code)
	params.AddIfNotEmpty(oauthmodel.ParamToken, resp.Token)
	params.AddIfNotEmpty(oauthmodel.ParamIDToken, resp.IDToken)
	params.AddIfNotEmpty(oauthmodel.ParamState, req.State)

	stage = as.advance(logger, StageCompleted)
	as.metrics.IncrementAuthorizationOutcome(endpoint, string(stage), "")
	return &redirect.Payload{
		RedirectURI:  req.RedirectURI,
		ResponseMode: req.ResponseMode,
		Params:       params,
	}, nil
}

// checkAuthorizeResponse verifies the shape of the Portal's answer: every requested component is
// present and the id_token is a well formed JWT bound to the request nonce. Signatures are the
// relying application's to verify.
func checkAuthorizeResponse(req oauthmodel.AuthorizationRequest, resp *portal.AuthorizeResponse) error {
	if resp == nil {
		return errors.New("empty response")
	}
	if req.ResponseType.Contains(oauthmodel.ResponseTypeCode) && resp.Code == "" {
		return errors.New("code missing")
	}
	if req.ResponseType.Contains(oauthmodel.ResponseTypeToken) && resp.Token == "" {
		return errors.New("token missing")
	}
	if !req.ResponseType.Contains(oauthmodel.ResponseTypeIDToken) {
		return nil
	}
	if resp.IDToken == "" {
		return errors.New("id_token missing")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.IDToken, claims); err != nil {
		return err
	}
	if nonce, ok := claims["nonce"].(string); ok && req.Nonce != "" && nonce != req.Nonce {
		return errors.New("id_token nonce does not match the request")
	}
	return nil
}

func (as *AuthorizationService) requestLogger(ctx context.Context, endpoint string) zerolog.Logger {
	logger := as.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = *l
	}
	return logger.With().Str("endpoint", endpoint).Logger()
}

func (as *AuthorizationService) advance(logger zerolog.Logger, stage Stage) Stage {
	logger.Debug().Str("stage", string(stage)).Msg("Authorization stage")
	return stage
}

// fail logs and counts a failed request at the stage it failed in.
func (as *AuthorizationService) fail(logger zerolog.Logger, endpoint string, stage Stage, oauthErr *oauthmodel.Error) *oauthmodel.Error {
	event := logger.Info()
	if oauthErr.Code == oauthmodel.ErrorCodeServerError {
		event = logger.Error()
	}
	event.Str("stage", string(StageFailed)).
		Str("failed_at", string(stage)).
		Str("code", oauthErr.Code).
		Str("attribute", oauthErr.Attribute).
		Msg("Authorization request failed")
	as.metrics.IncrementAuthorizationOutcome(endpoint, string(stage), oauthErr.Code)
	return oauthErr
}
