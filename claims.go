package unifiedauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleAuthenticated is the role claim carried by SIWE-minted tokens; it
// matches what Supabase expects from third-party JWTs.
const RoleAuthenticated = "authenticated"

// SIWEIssuer identifies tokens minted by the SIWE verify flow.
const SIWEIssuer = "siwe"

// AuthClaims represents structured JWT claims from either credential source
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	WalletAddress() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UserRole string         `json:"role,omitempty"`
	Address  string         `json:"addr,omitempty"`
	Email    string         `json:"email,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"` // extension payload
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user identifier: the subject for Supabase tokens, the
// wallet address for SIWE tokens.
func (c *JWTClaims) UserID() string {
	if c.RegisteredClaims.Subject != "" {
		return c.RegisteredClaims.Subject
	}
	return c.Address
}

// Role returns the role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// WalletAddress returns the wallet address claim, or "" for non-SIWE tokens.
func (c *JWTClaims) WalletAddress() string {
	return c.Address
}

// ClaimsMetadata exposes metadata extensions for optional context enrichment.
func (c *JWTClaims) ClaimsMetadata() map[string]any {
	return c.Metadata
}

// IsSIWE reports whether the token was minted by the SIWE verify flow.
func (c *JWTClaims) IsSIWE() bool {
	return c.RegisteredClaims.Issuer == SIWEIssuer
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
