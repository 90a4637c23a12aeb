package siwe

import "github.com/goliatone/go-errors"

// ErrMalformedMessage is returned when a message does not match the
// canonical layout emitted by BuildMessage.
var ErrMalformedMessage = errors.New("malformed SIWE message", errors.CategoryBadInput).
	WithTextCode("SIWE_MALFORMED_MESSAGE").
	WithCode(errors.CodeBadRequest)

// ErrNonceMissing is returned when a message carries no Nonce line.
var ErrNonceMissing = errors.New("nonce not found in message", errors.CategoryBadInput).
	WithTextCode("SIWE_NONCE_MISSING").
	WithCode(errors.CodeBadRequest)

// ErrUnknownNonce is returned when verification references a nonce that was
// never issued or already swept.
var ErrUnknownNonce = errors.New("unknown nonce", errors.CategoryBadInput).
	WithTextCode("SIWE_UNKNOWN_NONCE").
	WithCode(errors.CodeBadRequest)

// ErrNonceUsed is returned when a nonce is presented a second time.
var ErrNonceUsed = errors.New("nonce already used", errors.CategoryBadInput).
	WithTextCode("SIWE_NONCE_USED").
	WithCode(errors.CodeBadRequest)

// ErrNonceExpired is returned when the nonce TTL has elapsed.
var ErrNonceExpired = errors.New("nonce expired", errors.CategoryBadInput).
	WithTextCode("SIWE_NONCE_EXPIRED").
	WithCode(errors.CodeBadRequest)

// ErrAddressMismatch is returned when the recovered or stored signer does
// not match the address in the message.
var ErrAddressMismatch = errors.New("signature verification failed", errors.CategoryAuth).
	WithTextCode("SIWE_ADDRESS_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidAddress is returned for challenge requests with a bad address.
var ErrInvalidAddress = errors.New("invalid Ethereum address", errors.CategoryValidation).
	WithTextCode("SIWE_INVALID_ADDRESS").
	WithCode(errors.CodeBadRequest)
