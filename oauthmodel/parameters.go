package oauthmodel

import "github.com/coreos/go-oidc/v3/oidc"

// Request parameter names shared by the authorize, authenticate and mobile endpoints.
const (
	ParamResponseType        = "response_type"
	ParamResponseMode        = "response_mode"
	ParamClientID            = "client_id"
	ParamRedirectURI         = "redirect_uri"
	ParamScope               = "scope"
	ParamState               = "state"
	ParamNonce               = "nonce"
	ParamCodeChallenge       = "code_challenge"
	ParamCodeChallengeMethod = "code_challenge_method"
	ParamReady               = "ready"

	ParamProof             = "proof"
	ParamNullifierHash     = "nullifier_hash"
	ParamMerkleRoot        = "merkle_root"
	ParamVerificationLevel = "verification_level"
	// ParamCredentialType is the legacy name of verification_level.
	ParamCredentialType = "credential_type"

	ParamCode    = "code"
	ParamToken   = "token"
	ParamIDToken = "id_token"
)

// AuthorizationParamNames lists the parameters that make up an authorization request, in the
// order they are echoed back to the login page or to the error page for a retry.
var AuthorizationParamNames = []string{
	ParamClientID,
	ParamRedirectURI,
	ParamScope,
	ParamState,
	ParamNonce,
	ParamCodeChallenge,
	ParamCodeChallengeMethod,
	ParamResponseMode,
	ParamResponseType,
}

// Supported scopes.
const (
	ScopeOpenID  = oidc.ScopeOpenID
	ScopeProfile = "profile"
	ScopeEmail   = "email"
)

// SupportedScopes are the only scopes a relying application may request.
var SupportedScopes = []string{ScopeOpenID, ScopeProfile, ScopeEmail}

// ResponseModeType denotes how the authorization response parameters are returned to the client.
type ResponseModeType string

const (
	// QueryResponseMode returns parameters in the URL query string.
	// Example: https://client.example.com/callback?code=ABC123&state=xyz
	// Security: Parameters visible in browser history and server logs, so never used for tokens
	QueryResponseMode ResponseModeType = "query"

	// FragmentResponseMode returns parameters in the URL fragment (after #).
	// Example: https://client.example.com/callback#id_token=ABC123&state=xyz
	FragmentResponseMode ResponseModeType = "fragment"

	// FormPostResponseMode returns parameters via HTTP POST with an auto-submitting HTML form.
	FormPostResponseMode ResponseModeType = "form_post"
)

// Valid reports whether rm is one of the supported response modes.
func (rm ResponseModeType) Valid() bool {
	switch rm {
	case QueryResponseMode, FragmentResponseMode, FormPostResponseMode:
		return true
	}
	return false
}

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// This is the only method accepted.
	CodeMethodTypeS256 CodeMethodType = "S256"
)

// AuthorizationRequest is a validated authorization request.
// It is built once per inbound request by the validator and never mutated afterwards.
type AuthorizationRequest struct {
	// ResponseType is the raw space-delimited response_type as sent by the client.
	// Example: "code id_token"
	ResponseType ResponseType

	// Flow is derived from ResponseType; never FlowInvalid on a validated request.
	Flow FlowType

	// ClientID identifies the relying application (the Portal calls it app_id).
	ClientID string

	// RedirectURI is where the authorization response will be sent. Always absolute.
	// Registration of the URI for the client is checked by the Portal.
	RedirectURI string

	// Scope is the space-delimited scope, always containing "openid".
	Scope string

	// State is the opaque client value echoed back with the response.
	// Optional, at most 256 characters of a restricted charset.
	State string

	// Nonce binds the eventual id_token to the client session.
	// Required for every flow that returns tokens through the front channel.
	Nonce string

	// ResponseMode is the resolved delivery mechanism, never empty on a validated request.
	ResponseMode ResponseModeType

	// CodeChallenge and CodeChallengeMethod are the optional PKCE pair.
	CodeChallenge       string
	CodeChallengeMethod CodeMethodType
}

// AuthenticationRequest is an authorization request completed with the user's proof.
// It is received from the login page once the proof-collection bridge is done.
type AuthenticationRequest struct {
	AuthorizationRequest

	// Proof, NullifierHash and MerkleRoot are produced by the proof-collection bridge
	// and are forwarded to the Portal untouched.
	Proof         string
	NullifierHash string
	MerkleRoot    string

	// VerificationLevel is the level of the proof ("orb", "device", ...).
	// Older login pages send it as credential_type.
	VerificationLevel string
}
