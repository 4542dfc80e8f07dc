package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
)

const maxStateLength = 256

// Validator provides centralized validation logic for the authorize and authenticate requests.
// Checks run in a fixed order and the first failure is returned as an *oauthmodel.Error.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

var authorizeRequired = []string{
	oauthmodel.ParamResponseType,
	oauthmodel.ParamClientID,
	oauthmodel.ParamRedirectURI,
}

var authenticateRequired = []string{
	oauthmodel.ParamProof,
	oauthmodel.ParamNullifierHash,
	oauthmodel.ParamMerkleRoot,
	oauthmodel.ParamVerificationLevel,
	oauthmodel.ParamClientID,
	oauthmodel.ParamScope,
	oauthmodel.ParamResponseType,
	oauthmodel.ParamRedirectURI,
}

// ValidateAuthorize validates the query of an inbound authorization request.
// The nonce is only required when the flow is not the pure authorization code flow.
func (v *Validator) ValidateAuthorize(values url.Values) (*oauthmodel.AuthorizationRequest, error) {
	if err := v.ValidateRequired(values, authorizeRequired...); err != nil {
		return nil, err
	}
	return v.validateCommon(values, func(flow oauthmodel.FlowType, _ oauthmodel.ResponseType) bool {
		return flow != oauthmodel.FlowAuthorizationCode
	})
}

// ValidateAuthenticate validates the request that completes an authorization with the user's proof.
// The nonce is required for every response type except code and code token.
func (v *Validator) ValidateAuthenticate(values url.Values) (*oauthmodel.AuthenticationRequest, error) {
	values = withVerificationLevel(values)
	if err := v.ValidateRequired(values, authenticateRequired...); err != nil {
		return nil, err
	}
	req, err := v.validateCommon(values, func(_ oauthmodel.FlowType, rt oauthmodel.ResponseType) bool {
		return !rt.Is(oauthmodel.ResponseTypeCode) &&
			!rt.Is(oauthmodel.ResponseTypeCode, oauthmodel.ResponseTypeToken)
	})
	if err != nil {
		return nil, err
	}
	return &oauthmodel.AuthenticationRequest{
		AuthorizationRequest: *req,
		Proof:                values.Get(oauthmodel.ParamProof),
		NullifierHash:        values.Get(oauthmodel.ParamNullifierHash),
		MerkleRoot:           values.Get(oauthmodel.ParamMerkleRoot),
		VerificationLevel:    values.Get(oauthmodel.ParamVerificationLevel),
	}, nil
}

// validateCommon runs every check after required presence. nonceRequired decides the nonce rule
// for the calling path.
func (v *Validator) validateCommon(values url.Values, nonceRequired func(oauthmodel.FlowType, oauthmodel.ResponseType) bool) (*oauthmodel.AuthorizationRequest, error) {
	redirectURI := values.Get(oauthmodel.ParamRedirectURI)
	if err := ValidateRedirectURI(redirectURI); err != nil {
		return nil, err
	}

	rt := oauthmodel.ResponseType(strings.TrimSpace(values.Get(oauthmodel.ParamResponseType)))
	flow := oauthmodel.ClassifyFlow(string(rt))
	if flow == oauthmodel.FlowInvalid {
		return nil, oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest, "Invalid response type.", oauthmodel.ParamResponseType)
	}

	scope := values.Get(oauthmodel.ParamScope)
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}

	nonce := values.Get(oauthmodel.ParamNonce)
	if nonce == "" && nonceRequired(flow, rt) {
		return nil, oauthmodel.RequiredError(oauthmodel.ParamNonce)
	}

	mode, err := ResolveResponseMode(rt, values.Get(oauthmodel.ParamResponseMode))
	if err != nil {
		return nil, err
	}

	challenge := values.Get(oauthmodel.ParamCodeChallenge)
	method := values.Get(oauthmodel.ParamCodeChallengeMethod)
	if err := v.ValidatePKCE(challenge, method); err != nil {
		return nil, err
	}

	state := values.Get(oauthmodel.ParamState)
	if err := ValidateState(state); err != nil {
		return nil, err
	}

	return &oauthmodel.AuthorizationRequest{
		ResponseType:        rt,
		Flow:                flow,
		ClientID:            values.Get(oauthmodel.ParamClientID),
		RedirectURI:         redirectURI,
		Scope:               strings.Join(strings.Fields(scope), " "),
		State:               state,
		Nonce:               nonce,
		ResponseMode:        mode,
		CodeChallenge:       challenge,
		CodeChallengeMethod: oauthmodel.CodeMethodType(method),
	}, nil
}

// ValidateRequired checks that every named attribute has a non-blank value.
func (v *Validator) ValidateRequired(values url.Values, names ...string) error {
	for _, name := range names {
		if strings.TrimSpace(values.Get(name)) == "" {
			return oauthmodel.RequiredError(name)
		}
	}
	return nil
}

// ValidatePKCE validates PKCE (Proof Key for Code Exchange) parameters.
// Both are optional but must be provided together, and only S256 is accepted.
func (v *Validator) ValidatePKCE(codeChallenge, codeChallengeMethod string) error {
	if codeChallenge == "" && codeChallengeMethod == "" {
		return nil
	}
	if codeChallenge == "" {
		return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest,
			"code_challenge is required when code_challenge_method is provided.", oauthmodel.ParamCodeChallenge)
	}
	if codeChallengeMethod == "" {
		return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest,
			"code_challenge_method is required when code_challenge is provided.", oauthmodel.ParamCodeChallengeMethod)
	}
	if oauthmodel.CodeMethodType(codeChallengeMethod) != oauthmodel.CodeMethodTypeS256 {
		return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest,
			fmt.Sprintf("Invalid code_challenge_method: %s. Only S256 is supported.", codeChallengeMethod), oauthmodel.ParamCodeChallengeMethod)
	}
	return nil
}

// ValidateScope requires openid and allows only the supported scopes.
func ValidateScope(scope string) error {
	scopes := strings.Fields(scope)
	hasOpenID := false
	for _, s := range scopes {
		if !isSupportedScope(s) {
			return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidScope,
				fmt.Sprintf("The requested scope is invalid, unknown, or malformed. %s is not supported.", s), oauthmodel.ParamScope)
		}
		if s == oauthmodel.ScopeOpenID {
			hasOpenID = true
		}
	}
	if !hasOpenID {
		return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidScope, "The openid scope is always required.", oauthmodel.ParamScope)
	}
	return nil
}

func isSupportedScope(scope string) bool {
	for _, s := range oauthmodel.SupportedScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ValidateRedirectURI requires an absolute URI with a host and no surrounding whitespace, since the
// value is used as is for the Portal call and the final redirect. Whether it is registered for the
// client is checked by the Portal.
func ValidateRedirectURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil || !u.IsAbs() || u.Host == "" || strings.TrimSpace(uri) != uri {
		return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest,
			"The redirect URI provided is missing or malformed.", oauthmodel.ParamRedirectURI)
	}
	return nil
}

// ValidateState validates the OAuth state parameter. It is echoed into redirects and HTML forms,
// so only printable ASCII without whitespace, quotes, backslash, backtick or angle brackets is allowed.
func ValidateState(state string) error {
	if state == "" {
		return nil
	}
	if len(state) > maxStateLength {
		return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest,
			fmt.Sprintf("state must be at most %d characters.", maxStateLength), oauthmodel.ParamState)
	}
	for i := 0; i < len(state); i++ {
		c := state[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte("\"'<>\\`", c) >= 0 {
			return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidRequest,
				"state contains characters that are not allowed.", oauthmodel.ParamState)
		}
	}
	return nil
}

// withVerificationLevel fills verification_level from the legacy credential_type when absent.
func withVerificationLevel(values url.Values) url.Values {
	if values.Get(oauthmodel.ParamVerificationLevel) != "" {
		return values
	}
	legacy := values.Get(oauthmodel.ParamCredentialType)
	if legacy == "" {
		return values
	}
	out := make(url.Values, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	out.Set(oauthmodel.ParamVerificationLevel, legacy)
	return out
}
