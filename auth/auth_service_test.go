package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-signin-bridge/auth"
	"github.com/jrsteele09/go-signin-bridge/auth/mocks"
	apperrors "github.com/jrsteele09/go-signin-bridge/internal/errors"
	"github.com/jrsteele09/go-signin-bridge/internal/metrics"
	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/jrsteele09/go-signin-bridge/portal"
	"github.com/jrsteele09/go-signin-bridge/redirect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthorizationServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockPortal *mocks.MockPortal
	metrics    *metrics.Metrics
	service    *auth.AuthorizationService
}

func TestAuthorizationServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthorizationServiceSuite))
}

func (s *AuthorizationServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockPortal = mocks.NewMockPortal(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	var err error
	s.service, err = auth.NewAuthorizationService(
		s.mockPortal,
		auth.WithMetrics(s.metrics),
		auth.WithNonceGenerator(func() string { return "generated-nonce" }),
	)
	s.Require().NoError(err)
}

func (s *AuthorizationServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthorizationServiceSuite) requireError(err error, code, attribute string) *oauthmodel.Error {
	s.Require().Error(err)
	oauthErr, ok := err.(*oauthmodel.Error)
	s.Require().True(ok, "expected *oauthmodel.Error, got %T", err)
	s.Equal(code, oauthErr.Code)
	s.Equal(attribute, oauthErr.Attribute)
	return oauthErr
}

func (s *AuthorizationServiceSuite) idToken(nonce string) string {
	claims := jwt.MapClaims{"sub": "0xnullifier", "aud": testClientID}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)
	return signed
}

func (s *AuthorizationServiceSuite) TestNew() {
	s.Run("nil portal returns error", func() {
		_, err := auth.NewAuthorizationService(nil)
		s.Error(err)
		s.Contains(err.Error(), "portal is required")
	})
}

func (s *AuthorizationServiceSuite) TestAuthorize() {
	ctx := context.Background()

	s.Run("validated and registered", func() {
		s.mockPortal.EXPECT().
			ValidateClient(gomock.Any(), portal.ValidateRequest{AppID: testClientID, RedirectURI: testRedirectURI}).
			Return(nil)

		req, err := s.service.Authorize(ctx, authorizeValues("code"))
		s.Require().NoError(err)
		s.Equal(testNonce, req.Nonce)
		s.Equal(oauthmodel.QueryResponseMode, req.ResponseMode)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthorizationOutcomes.WithLabelValues("authorize", "awaiting_user_proof", "")))
	})

	s.Run("generates a missing nonce", func() {
		s.mockPortal.EXPECT().ValidateClient(gomock.Any(), gomock.Any()).Return(nil)

		values := authorizeValues("code")
		values.Del("nonce")
		req, err := s.service.Authorize(ctx, values)
		s.Require().NoError(err)
		s.Equal("generated-nonce", req.Nonce)
	})

	s.Run("invalid request never reaches the portal", func() {
		values := authorizeValues("code")
		values.Set("scope", "profile")
		_, err := s.service.Authorize(ctx, values)
		s.requireError(err, oauthmodel.ErrorCodeInvalidScope, "scope")
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthorizationOutcomes.WithLabelValues("authorize", "validating", "invalid_scope")))
	})

	s.Run("unknown client", func() {
		s.mockPortal.EXPECT().ValidateClient(gomock.Any(), gomock.Any()).
			Return(&portal.Error{Status: http.StatusNotFound, Code: "not_found", Detail: "App not found."})

		_, err := s.service.Authorize(ctx, authorizeValues("code"))
		oauthErr := s.requireError(err, oauthmodel.ErrorCodeInvalidClientID, "client_id")
		s.Contains(oauthErr.Detail, "Invalid client ID")
	})

	s.Run("portal rejection keeps code and detail and remaps app_id", func() {
		s.mockPortal.EXPECT().ValidateClient(gomock.Any(), gomock.Any()).
			Return(&portal.Error{Status: http.StatusBadRequest, Code: "invalid_redirect_uri", Detail: "Redirect URI not registered.", Attribute: "app_id"})

		_, err := s.service.Authorize(ctx, authorizeValues("code"))
		oauthErr := s.requireError(err, "invalid_redirect_uri", "client_id")
		s.Equal("Redirect URI not registered.", oauthErr.Detail)
	})

	s.Run("portal rejection without body", func() {
		s.mockPortal.EXPECT().ValidateClient(gomock.Any(), gomock.Any()).
			Return(&portal.Error{Status: http.StatusBadRequest})

		_, err := s.service.Authorize(ctx, authorizeValues("code"))
		oauthErr := s.requireError(err, oauthmodel.ErrorCodeInvalidRequest, "")
		s.Equal(oauthmodel.DetailInvalidRequest, oauthErr.Detail)
	})

	s.Run("portal failures are generalized", func() {
		failures := []error{
			&portal.Error{Status: http.StatusInternalServerError, Code: "internal", Detail: "db down at host x"},
			fmt.Errorf("dial: %w", apperrors.ErrPortalUnavailable),
		}
		for _, failure := range failures {
			s.mockPortal.EXPECT().ValidateClient(gomock.Any(), gomock.Any()).Return(failure)

			_, err := s.service.Authorize(ctx, authorizeValues("code"))
			oauthErr := s.requireError(err, oauthmodel.ErrorCodeServerError, "")
			s.Equal(oauthmodel.DetailServerError, oauthErr.Detail)
		}
	})
}

func (s *AuthorizationServiceSuite) TestAuthenticate() {
	ctx := context.Background()

	s.Run("code flow", func() {
		s.mockPortal.EXPECT().Authorize(gomock.Any(), portal.AuthorizeRequest{
			Proof:             "0xproof",
			Scope:             "openid profile",
			MerkleRoot:        "0xroot",
			RedirectURI:       testRedirectURI,
			ResponseType:      "code",
			Signal:            testNonce,
			NullifierHash:     "0xnullifier",
			VerificationLevel: "orb",
			AppID:             testClientID,
		}).Return(&portal.AuthorizeResponse{Code: "auth-code"}, nil)

		payload, err := s.service.Authenticate(ctx, authenticateValues("code"))
		s.Require().NoError(err)
		s.Equal(testRedirectURI, payload.RedirectURI)
		s.Equal(oauthmodel.QueryResponseMode, payload.ResponseMode)
		s.Equal("code=auth-code&state=random-state-value", payload.Params.Encode())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthorizationOutcomes.WithLabelValues("authenticate", "completed", "")))
	})

	s.Run("hybrid flow keeps pair order", func() {
		token := s.idToken(testNonce)
		s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			Return(&portal.AuthorizeResponse{IDToken: token, Token: "access", Code: "auth-code"}, nil)

		payload, err := s.service.Authenticate(ctx, authenticateValues("code id_token token"))
		s.Require().NoError(err)
		s.Equal(oauthmodel.FragmentResponseMode, payload.ResponseMode)
		keys := make([]string, 0, len(payload.Params))
		for _, kv := range payload.Params {
			keys = append(keys, kv.Key)
		}
		s.Equal([]string{"code", "token", "id_token", "state"}, keys)
		s.Contains(payload.Params, redirect.Param{Key: "id_token", Value: token})
	})

	s.Run("pkce is forwarded", func() {
		values := authenticateValues("code")
		values.Set("code_challenge", "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM")
		values.Set("code_challenge_method", "S256")
		s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req portal.AuthorizeRequest) (*portal.AuthorizeResponse, error) {
				s.Equal("E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", req.CodeChallenge)
				s.Equal("S256", req.CodeChallengeMethod)
				return &portal.AuthorizeResponse{Code: "auth-code"}, nil
			})

		_, err := s.service.Authenticate(ctx, values)
		s.Require().NoError(err)
	})

	s.Run("proof material is never echoed", func() {
		s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(&portal.AuthorizeResponse{Code: "auth-code"}, nil)

		payload, err := s.service.Authenticate(ctx, authenticateValues("code"))
		s.Require().NoError(err)
		for _, kv := range payload.Params {
			s.NotContains([]string{"proof", "nullifier_hash", "merkle_root"}, kv.Key)
		}
	})

	s.Run("rejected proof", func() {
		s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			Return(nil, &portal.Error{Status: http.StatusBadRequest, Code: "invalid_proof", Detail: "The proof was rejected."})

		_, err := s.service.Authenticate(ctx, authenticateValues("code"))
		oauthErr := s.requireError(err, oauthmodel.ErrorCodeAuthenticationFailed, "")
		s.Equal("The proof was rejected.", oauthErr.Detail)
		s.True(oauthErr.IsUserError())
	})

	s.Run("rejected proof without detail", func() {
		s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			Return(nil, &portal.Error{Status: http.StatusForbidden})

		_, err := s.service.Authenticate(ctx, authenticateValues("code"))
		oauthErr := s.requireError(err, oauthmodel.ErrorCodeAuthenticationFailed, "")
		s.Equal(oauthmodel.DetailAuthenticationFailed, oauthErr.Detail)
	})

	s.Run("portal outage", func() {
		s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("timeout: %w", apperrors.ErrPortalUnavailable))

		_, err := s.service.Authenticate(ctx, authenticateValues("code"))
		s.requireError(err, oauthmodel.ErrorCodeServerError, "")
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthorizationOutcomes.WithLabelValues("authenticate", "exchanging", "server_error")))
	})

	s.Run("unusable portal response", func() {
		tests := []struct {
			responseType string
			resp         *portal.AuthorizeResponse
		}{
			{"code", &portal.AuthorizeResponse{}},
			{"code token", &portal.AuthorizeResponse{Code: "auth-code"}},
			{"id_token", &portal.AuthorizeResponse{IDToken: "not-a-jwt"}},
			{"id_token", &portal.AuthorizeResponse{IDToken: s.idToken("another-nonce")}},
		}
		for _, tt := range tests {
			s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(tt.resp, nil)

			_, err := s.service.Authenticate(ctx, authenticateValues(tt.responseType))
			s.requireError(err, oauthmodel.ErrorCodeServerError, "")
		}
	})

	s.Run("validation failure", func() {
		values := authenticateValues("id_token")
		values.Del("nonce")
		_, err := s.service.Authenticate(ctx, values)
		s.requireError(err, oauthmodel.ErrorCodeRequired, "nonce")
	})
}

func (s *AuthorizationServiceSuite) TestAuthenticateMobile() {
	ctx := context.Background()

	s.Run("form_post is refused", func() {
		values := authenticateValues("code")
		values.Set("response_mode", "form_post")
		_, err := s.service.AuthenticateMobile(ctx, values)
		s.requireError(err, oauthmodel.ErrorCodeInvalidResponseMode, "response_mode")
	})

	s.Run("form_post is refused after normalization", func() {
		values := authenticateValues("code")
		values.Set("response_mode", "form_post ")
		_, err := s.service.AuthenticateMobile(ctx, values)
		s.requireError(err, oauthmodel.ErrorCodeInvalidResponseMode, "response_mode")
		s.Equal(2.0, testutil.ToFloat64(s.metrics.AuthorizationOutcomes.WithLabelValues("mobile_auth", "validating", "invalid_response_mode")))
	})

	s.Run("fragment", func() {
		s.mockPortal.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(&portal.AuthorizeResponse{Code: "auth-code"}, nil)

		values := authenticateValues("code")
		values.Set("response_mode", "fragment")
		payload, err := s.service.AuthenticateMobile(ctx, values)
		s.Require().NoError(err)
		s.Equal(oauthmodel.FragmentResponseMode, payload.ResponseMode)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthorizationOutcomes.WithLabelValues("mobile_auth", "completed", "")))
	})
}
