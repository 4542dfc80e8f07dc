package oauthmodel

import "fmt"

// Error codes exposed to relying applications and to the error page.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidClientID      = "invalid_client_id"
	ErrorCodeInvalidScope         = "invalid_scope"
	ErrorCodeRequired             = "required"
	ErrorCodeAuthenticationFailed = "authentication_failed"
	ErrorCodeServerError          = "server_error"
	ErrorCodeMethodNotAllowed     = "method_not_allowed"
	ErrorCodeInvalidResponseMode  = "invalid_response_mode"
	ErrorCodeNotFound             = "not_found"
)

// Generic details for failures the user can only retry.
const (
	DetailServerError          = "Something went wrong. Please try again or contact support."
	DetailAuthenticationFailed = "We could not complete your authentication. Please try again."
	DetailInvalidRequest       = "Invalid request. Please review and try again."
)

// Error is a failure surfaced to the caller as {code, detail, attribute}.
type Error struct {
	Code      string `json:"code"`
	Detail    string `json:"detail"`
	Attribute string `json:"attribute,omitempty"`
}

// NewError creates an Error for the given attribute, which may be empty.
func NewError(code, detail, attribute string) *Error {
	return &Error{Code: code, Detail: detail, Attribute: attribute}
}

// RequiredError reports a missing attribute.
func RequiredError(attribute string) *Error {
	return NewError(ErrorCodeRequired, fmt.Sprintf("This attribute is required: %s.", attribute), attribute)
}

// ServerError is the generic failure for Portal outages, timeouts and internal faults.
func ServerError() *Error {
	return NewError(ErrorCodeServerError, DetailServerError, "")
}

func (e *Error) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Detail, e.Attribute)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// IsUserError reports whether the failure is on the user's side of the flow (the proof was
// rejected or the Portal could not be reached). These can be retried as is, whereas every
// other code means the relying application has to fix its request.
func (e *Error) IsUserError() bool {
	return e.Code == ErrorCodeAuthenticationFailed || e.Code == ErrorCodeServerError
}
