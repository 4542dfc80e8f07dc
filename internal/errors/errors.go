package errors

import (
	"errors"
	"fmt"
)

// Common error types for the sign-in bridge
var (
	// Portal errors
	ErrPortalUnavailable = errors.New("portal unavailable")
	ErrPortalResponse    = errors.New("unexpected portal response")

	// Response delivery errors
	ErrUnsupportedResponseMode = errors.New("unsupported response mode")
	ErrInvalidRedirectURI      = errors.New("invalid redirect URI")

	// Request errors
	ErrInvalidRequestBody = errors.New("invalid request body")
)

// Wrapf adds a location prefix to err. format may carry its own %w, such as a sentinel,
// so callers can match both the sentinel and the cause.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
