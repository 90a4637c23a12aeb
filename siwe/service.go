package siwe

import (
	"context"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
)

const (
	defaultDomain    = "imperfectbreath.com"
	defaultURI       = "https://imperfectbreath.com"
	defaultStatement = "Sign-In with Ethereum to Imperfect Breath"
	defaultChainID   = 1

	issuedAtLayout = "2006-01-02T15:04:05Z"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// SignatureVerifier checks that signature over message was produced by
// address. Implementations perform the EVM signature recovery; this package
// never constructs or signs chain data itself.
type SignatureVerifier interface {
	Verify(ctx context.Context, message, signature, address string) error
}

// SignatureVerifierFunc adapts a function into a SignatureVerifier.
type SignatureVerifierFunc func(ctx context.Context, message, signature, address string) error

// Verify satisfies the SignatureVerifier interface.
func (f SignatureVerifierFunc) Verify(ctx context.Context, message, signature, address string) error {
	if f == nil {
		return ErrAddressMismatch
	}
	return f(ctx, message, signature, address)
}

// ChallengeRequest is the input to Challenge. Zero-valued optional fields
// fall back to the service defaults.
type ChallengeRequest struct {
	Address   string `json:"address"`
	ChainID   int64  `json:"chainId,omitempty"`
	Domain    string `json:"domain,omitempty"`
	URI       string `json:"uri,omitempty"`
	Statement string `json:"statement,omitempty"`
}

// Validate enforces the address shape before a nonce is spent on it.
func (r ChallengeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Address, validation.Required, validation.Match(addressPattern).Error("invalid Ethereum address")),
		validation.Field(&r.ChainID, validation.Min(0)),
	)
}

// Challenge is the issued nonce plus the canonical message to sign.
type Challenge struct {
	Message  string `json:"message"`
	Nonce    string `json:"nonce"`
	IssuedAt string `json:"issuedAt"`
	ChainID  int64  `json:"chainId"`
	Domain   string `json:"domain"`
	URI      string `json:"uri"`
}

// VerifyResult reports a successful verification. JWT is empty when no
// token service is configured.
type VerifyResult struct {
	OK       bool   `json:"ok"`
	Address  string `json:"address"`
	Nonce    string `json:"nonce"`
	Verified bool   `json:"siweVerified"`
	JWT      string `json:"thirdPartyJwt,omitempty"`
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithTokenService enables third-party JWT minting on successful verify.
func WithTokenService(tokens unifiedauth.TokenService) ServiceOption {
	return func(s *Service) {
		s.tokens = tokens
	}
}

// WithDefaults overrides the domain, URI, and statement used when a
// challenge request leaves them empty.
func WithDefaults(domain, uri, statement string) ServiceOption {
	return func(s *Service) {
		if domain != "" {
			s.domain = domain
		}
		if uri != "" {
			s.uri = uri
		}
		if statement != "" {
			s.statement = statement
		}
	}
}

// WithServiceClock injects a custom clock (useful for tests).
func WithServiceClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithServiceLogger overrides the default logger.
func WithServiceLogger(logger unifiedauth.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service implements the challenge-and-verify flow.
type Service struct {
	store     NonceStore
	verifier  SignatureVerifier
	tokens    unifiedauth.TokenService
	domain    string
	uri       string
	statement string
	logger    unifiedauth.Logger
	now       func() time.Time
}

// NewService wires the flow around a nonce store and a signature verifier.
func NewService(store NonceStore, verifier SignatureVerifier, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		verifier:  verifier,
		domain:    defaultDomain,
		uri:       defaultURI,
		statement: defaultStatement,
		logger:    unifiedauth.DefaultLogger(),
		now:       time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Challenge issues a nonce and the canonical message for the address.
func (s *Service) Challenge(ctx context.Context, req ChallengeRequest) (Challenge, error) {
	if err := req.Validate(); err != nil {
		return Challenge{}, ErrInvalidAddress.WithMetadata(map[string]any{
			"address": req.Address,
			"detail":  err.Error(),
		})
	}

	domain := req.Domain
	if domain == "" {
		domain = s.domain
	}
	uri := req.URI
	if uri == "" {
		uri = s.uri
	}
	statement := req.Statement
	if statement == "" {
		statement = s.statement
	}
	chainID := req.ChainID
	if chainID == 0 {
		chainID = defaultChainID
	}

	now := s.now().UTC()
	nonce := newNonce()
	issuedAt := now.Format(issuedAtLayout)

	message := BuildMessage(MessageParams{
		Domain:    domain,
		Address:   req.Address,
		URI:       uri,
		ChainID:   chainID,
		Nonce:     nonce,
		IssuedAt:  issuedAt,
		Statement: statement,
	})

	record := NonceRecord{
		Address:   strings.ToLower(req.Address),
		Domain:    domain,
		URI:       uri,
		ChainID:   chainID,
		IssuedAt:  now,
		ExpiresAt: now.Add(NonceTTL),
	}

	if err := s.store.Save(ctx, nonce, record); err != nil {
		return Challenge{}, err
	}

	s.logger.Info("SIWE challenge issued for %s with nonce %s", req.Address, nonce)

	return Challenge{
		Message:  message,
		Nonce:    nonce,
		IssuedAt: issuedAt,
		ChainID:  chainID,
		Domain:   domain,
		URI:      uri,
	}, nil
}

// Verify checks the signature against the stored nonce and message content.
// The nonce is consumed only after a successful signature check.
func (s *Service) Verify(ctx context.Context, message, signature string) (VerifyResult, error) {
	parsedAddress, nonce, err := ParseMessage(message)
	if err != nil {
		return VerifyResult{}, err
	}
	address := strings.ToLower(parsedAddress)

	record, err := s.store.Get(ctx, nonce)
	if err != nil {
		return VerifyResult{}, err
	}
	if record.Used {
		return VerifyResult{}, ErrNonceUsed
	}
	if record.Address != address {
		return VerifyResult{}, ErrAddressMismatch
	}

	if err := s.verifier.Verify(ctx, message, signature, address); err != nil {
		return VerifyResult{}, err
	}

	if err := s.store.MarkUsed(ctx, nonce); err != nil {
		return VerifyResult{}, err
	}

	result := VerifyResult{
		OK:       true,
		Address:  address,
		Nonce:    nonce,
		Verified: true,
	}

	if s.tokens != nil {
		token, err := s.tokens.Mint(address)
		if err != nil {
			s.logger.Error("SIWE third-party JWT mint failed: %v", err)
			return VerifyResult{}, err
		}
		result.JWT = token
	}

	s.logger.Info("SIWE verified for %s (nonce %s)", address, nonce)

	return result, nil
}

// newNonce returns 32 hex chars, matching the uuid4().hex challenge format.
func newNonce() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
