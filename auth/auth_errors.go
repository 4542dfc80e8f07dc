package auth

import (
	"errors"

	"github.com/jrsteele09/go-signin-bridge/oauthmodel"
	"github.com/jrsteele09/go-signin-bridge/portal"
	"github.com/rs/zerolog"
)

const (
	detailInvalidClientID = "Invalid client ID. Is your app registered in the Developer Portal? Please review and try again."

	portalAttributeAppID = "app_id"
)

// asOAuthError keeps an *oauthmodel.Error as is and turns anything else into a server_error.
func asOAuthError(err error) *oauthmodel.Error {
	var oauthErr *oauthmodel.Error
	if errors.As(err, &oauthErr) {
		return oauthErr
	}
	return oauthmodel.ServerError()
}

// validateClientError maps a failed client validation. Portal outages are generalized; any other
// rejection is a developer error and keeps the Portal's explanation.
func validateClientError(logger zerolog.Logger, err error) *oauthmodel.Error {
	var portalErr *portal.Error
	if !errors.As(err, &portalErr) || portalErr.ServerSide() {
		logger.Error().Err(err).Msg("Client validation failed")
		return oauthmodel.ServerError()
	}

	if portalErr.Code == oauthmodel.ErrorCodeNotFound {
		return oauthmodel.NewError(oauthmodel.ErrorCodeInvalidClientID, detailInvalidClientID, oauthmodel.ParamClientID)
	}

	code := portalErr.Code
	if code == "" {
		code = oauthmodel.ErrorCodeInvalidRequest
	}
	detail := portalErr.Detail
	if detail == "" {
		detail = oauthmodel.DetailInvalidRequest
	}
	attribute := portalErr.Attribute
	if attribute == portalAttributeAppID {
		attribute = oauthmodel.ParamClientID
	}
	return oauthmodel.NewError(code, detail, attribute)
}

// authorizeError maps a failed proof exchange. Only the Portal's detail is surfaced, under
// authentication_failed, so the user can retry.
func authorizeError(logger zerolog.Logger, err error) *oauthmodel.Error {
	var portalErr *portal.Error
	if !errors.As(err, &portalErr) || portalErr.ServerSide() {
		logger.Error().Err(err).Msg("Proof exchange failed")
		return oauthmodel.ServerError()
	}

	detail := portalErr.Detail
	if detail == "" {
		detail = oauthmodel.DetailAuthenticationFailed
	}
	return oauthmodel.NewError(oauthmodel.ErrorCodeAuthenticationFailed, detail, "")
}
