package portal

import "fmt"

// ValidateRequest asks the Portal whether a client exists and accepts the redirect_uri.
type ValidateRequest struct {
	AppID       string `json:"app_id"`
	RedirectURI string `json:"redirect_uri"`
}

// AuthorizeRequest exchanges a verified proof for the requested code and tokens.
type AuthorizeRequest struct {
	Proof               string `json:"proof"`
	Scope               string `json:"scope"`
	MerkleRoot          string `json:"merkle_root"`
	RedirectURI         string `json:"redirect_uri"`
	ResponseType        string `json:"response_type"`
	Signal              string `json:"signal"`
	NullifierHash       string `json:"nullifier_hash"`
	VerificationLevel   string `json:"verification_level"`
	AppID               string `json:"app_id"`
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
}

// AuthorizeResponse carries whichever of code, token and id_token the response type asked for.
type AuthorizeResponse struct {
	Code    string `json:"code,omitempty"`
	Token   string `json:"token,omitempty"`
	IDToken string `json:"id_token,omitempty"`
}

// Error is a non-2xx answer from the Portal. Code, Detail and Attribute come from the
// response body when it could be decoded.
type Error struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Detail    string `json:"detail"`
	Attribute string `json:"attribute"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("portal responded %d", e.Status)
	}
	return fmt.Sprintf("portal responded %d: %s: %s", e.Status, e.Code, e.Detail)
}

// ServerSide reports a 5xx answer.
func (e *Error) ServerSide() bool {
	return e.Status >= 500
}
