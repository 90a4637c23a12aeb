package unifiedauth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrTokenExpired is returned when a presented JWT is past its expiration.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be parsed at all.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryBadInput).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeBadRequest)

// ErrUnableToDecodeSession unable to decode claims out of a validated token
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode("SESSION_DECODE_FAILED").
	WithCode(errors.CodeUnauthorized)

// ErrOrchestratorStarted is returned when Start is called on a running orchestrator.
var ErrOrchestratorStarted = errors.New("orchestrator already started", errors.CategoryConflict).
	WithTextCode("ORCHESTRATOR_STARTED").
	WithCode(errors.CodeConflict)

// ErrMissingAuthSource is returned when the orchestrator has no auth state source.
var ErrMissingAuthSource = errors.New("auth state source is required", errors.CategoryBadInput).
	WithTextCode("MISSING_AUTH_SOURCE").
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
