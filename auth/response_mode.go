package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
)

// ResolveResponseMode decides how the authorization response is delivered.
//
// When requested is empty the mode defaults to query for the pure code flow and fragment for
// everything else. An explicit query is refused whenever the response carries a token or an
// id_token, since those must never end up in a URL query.
func ResolveResponseMode(rt oauthmodel.ResponseType, requested string) (oauthmodel.ResponseModeType, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if oauthmodel.ClassifyFlow(string(rt)) == oauthmodel.FlowAuthorizationCode {
			return oauthmodel.QueryResponseMode, nil
		}
		return oauthmodel.FragmentResponseMode, nil
	}

	mode := oauthmodel.ResponseModeType(requested)
	if !mode.Valid() {
		return "", oauthmodel.NewError(
			oauthmodel.ErrorCodeInvalidRequest,
			fmt.Sprintf("Invalid response mode: %s.", requested),
			oauthmodel.ParamResponseMode,
		)
	}

	if mode == oauthmodel.QueryResponseMode && rt.CarriesToken() {
		return "", oauthmodel.NewError(
			oauthmodel.ErrorCodeInvalidRequest,
			fmt.Sprintf("Invalid response mode: %s. For response type %s, query is not supported for security reasons.", requested, rt),
			oauthmodel.ParamResponseMode,
		)
	}

	return mode, nil
}
