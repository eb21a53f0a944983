// Package errors defines the sentinel errors returned by the account engine.
// Each sentinel corresponds to one symbolic outcome in the error catalog; the
// handler layer resolves the symbolic name into an HTTP status and a localized
// message, the engine never does.
package errors

import (
	"errors"
)

var (
	ErrIdentityInUse      = errors.New("identity already in use")
	ErrMalformedToken     = errors.New("malformed token")
	ErrValidationFailed   = errors.New("account validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNoSuchIdentity     = errors.New("no such identity")
	ErrResetFailed        = errors.New("password reset failed")
	ErrUnknown            = errors.New("unknown error")
)

// CatalogName maps an engine error to its symbolic catalog name. Anything not
// recognized (store failures wrapped by the engine) collapses to UnknownError.
func CatalogName(err error) string {
	switch {
	case errors.Is(err, ErrIdentityInUse):
		return "PrimaryKeyInUse"
	case errors.Is(err, ErrMalformedToken):
		return "MalformedToken"
	case errors.Is(err, ErrValidationFailed):
		return "ValidationFailed"
	case errors.Is(err, ErrInvalidCredentials):
		return "InvalidCredentials"
	case errors.Is(err, ErrSessionNotFound):
		return "SessionNotFound"
	case errors.Is(err, ErrNoSuchIdentity):
		return "NoSuchPrimaryKey"
	case errors.Is(err, ErrResetFailed):
		return "ResetFailed"
	default:
		return "UnknownError"
	}
}
