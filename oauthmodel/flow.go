package oauthmodel

import "strings"

// ResponseType is the raw space-delimited response_type of a request.
type ResponseType string

// Response type components.
const (
	ResponseTypeCode    = "code"
	ResponseTypeToken   = "token"
	ResponseTypeIDToken = "id_token"
)

// Components returns the set of components in the response type.
// Duplicates collapse and order is irrelevant.
func (rt ResponseType) Components() map[string]struct{} {
	set := make(map[string]struct{})
	for _, c := range strings.Fields(string(rt)) {
		set[c] = struct{}{}
	}
	return set
}

// Contains reports whether the response type includes the given component.
func (rt ResponseType) Contains(component string) bool {
	_, ok := rt.Components()[component]
	return ok
}

// Is reports whether the response type is exactly the given set of components, in any order.
func (rt ResponseType) Is(components ...string) bool {
	set := rt.Components()
	if len(set) != len(components) {
		return false
	}
	for _, c := range components {
		if _, ok := set[c]; !ok {
			return false
		}
	}
	return true
}

// CarriesToken reports whether the response delivers a token through the front channel.
func (rt ResponseType) CarriesToken() bool {
	return rt.Contains(ResponseTypeToken) || rt.Contains(ResponseTypeIDToken)
}

// FlowType is the OAuth2/OIDC flow an authorization request belongs to.
type FlowType string

const (
	// FlowInvalid is returned for response types that match no flow.
	FlowInvalid           FlowType = ""
	FlowAuthorizationCode FlowType = "authorization_code"
	FlowImplicit          FlowType = "implicit"
	FlowHybrid            FlowType = "hybrid"
	FlowToken             FlowType = "token"
)

// ClassifyFlow maps a response_type to its flow.
//
//	code                                  -> authorization code
//	token                                 -> token
//	id_token, id_token token              -> implicit
//	code id_token, code token, code id_token token -> hybrid
//
// Anything else, including the empty string, is FlowInvalid.
func ClassifyFlow(responseType string) FlowType {
	set := ResponseType(responseType).Components()
	if len(set) == 0 {
		return FlowInvalid
	}
	for c := range set {
		switch c {
		case ResponseTypeCode, ResponseTypeToken, ResponseTypeIDToken:
		default:
			return FlowInvalid
		}
	}

	_, code := set[ResponseTypeCode]
	_, token := set[ResponseTypeToken]
	_, idToken := set[ResponseTypeIDToken]

	switch {
	case code && (token || idToken):
		return FlowHybrid
	case code:
		return FlowAuthorizationCode
	case idToken:
		return FlowImplicit
	case token:
		return FlowToken
	}
	return FlowInvalid
}
