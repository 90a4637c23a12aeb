package unifiedauth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProviderSession is the typed boundary for an externally issued auth
// session (Supabase). Internal code never holds the provider's raw payload.
type ProviderSession struct {
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	UserID       string     `json:"user_id,omitempty"`
	Email        string     `json:"email,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// UserUUID parses the session user ID as a UUID.
func (p *ProviderSession) UserUUID() (uuid.UUID, error) {
	if p == nil {
		return uuid.Nil, ErrUnableToDecodeSession
	}
	return uuid.Parse(p.UserID)
}

func (p *ProviderSession) equal(other *ProviderSession) bool {
	if p == nil || other == nil {
		return p == other
	}
	if !timePtrEqual(p.ExpiresAt, other.ExpiresAt) {
		return false
	}
	return p.AccessToken == other.AccessToken &&
		p.RefreshToken == other.RefreshToken &&
		p.UserID == other.UserID &&
		p.Email == other.Email
}

// Profile is the app-level user record attached to a session.
type Profile struct {
	ID          string `json:"id,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func (p *Profile) equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return *p == *other
}

// WalletState mirrors the connected EVM wallet status.
type WalletState struct {
	Address     string `json:"address,omitempty"`
	ChainID     int64  `json:"chain_id,omitempty"`
	IsConnected bool   `json:"is_connected"`
}

// LensState mirrors the Lens Protocol auth flag.
type LensState struct {
	IsAuthenticated bool `json:"is_authenticated"`
}

// RevenueCatState mirrors the last synced subscription entitlement state.
type RevenueCatState struct {
	IsAvailable          bool     `json:"is_available"`
	IsLoggedIn           bool     `json:"is_logged_in"`
	SubscriptionTier     Tier     `json:"subscription_tier,omitempty"`
	IsSubscriptionActive bool     `json:"is_subscription_active"`
	Features             []string `json:"features,omitempty"`
}

func (r RevenueCatState) equal(other RevenueCatState) bool {
	if r.IsAvailable != other.IsAvailable ||
		r.IsLoggedIn != other.IsLoggedIn ||
		r.SubscriptionTier != other.SubscriptionTier ||
		r.IsSubscriptionActive != other.IsSubscriptionActive {
		return false
	}
	if len(r.Features) != len(other.Features) {
		return false
	}
	for i := range r.Features {
		if r.Features[i] != other.Features[i] {
			return false
		}
	}
	return true
}

// SIWEState holds the Sign-In with Ethereum verification outcome. JWT is
// empty when no third-party token was minted.
type SIWEState struct {
	Verified bool   `json:"verified"`
	JWT      string `json:"jwt,omitempty"`
}

// SessionStatus is the derived status block. IsAuthenticated is computed at
// SetSession time and is not independently settable.
type SessionStatus struct {
	IsAuthenticated bool      `json:"is_authenticated"`
	IsLoading       bool      `json:"is_loading"`
	LastUpdated     time.Time `json:"last_updated"`
}

// AuthSession is the aggregate of all provider sub-states.
type AuthSession struct {
	Session    *ProviderSession `json:"session,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
	Profile    *Profile         `json:"profile,omitempty"`
	Wallet     WalletState      `json:"wallet"`
	Lens       LensState        `json:"lens"`
	RevenueCat RevenueCatState  `json:"revenue_cat"`
	SIWE       SIWEState        `json:"siwe"`
	Status     SessionStatus    `json:"status"`
}

// AuthLevel derives the credential summary for the aggregate: a Supabase
// session satisfies email, a wallet connection or SIWE verification
// satisfies wallet, both together are full.
func (a AuthSession) AuthLevel() AuthLevel {
	email := a.Session != nil
	wallet := a.Wallet.IsConnected || a.SIWE.Verified

	switch {
	case email && wallet:
		return AuthLevelFull
	case email:
		return AuthLevelEmail
	case wallet:
		return AuthLevelWallet
	default:
		return AuthLevelNone
	}
}

// SupabaseAccessToken returns the Supabase access token, or "" when no
// session is present.
func (a AuthSession) SupabaseAccessToken() string {
	if a.Session == nil {
		return ""
	}
	return a.Session.AccessToken
}

// SIWEJWT returns the SIWE-minted bearer JWT, or "" when SIWE has not been
// verified or no token was minted.
func (a AuthSession) SIWEJWT() string {
	if !a.SIWE.Verified {
		return ""
	}
	return a.SIWE.JWT
}

// clone returns a deep copy safe to hand to subscribers.
func (a AuthSession) clone() AuthSession {
	out := a
	if a.Session != nil {
		sess := *a.Session
		if a.Session.ExpiresAt != nil {
			exp := *a.Session.ExpiresAt
			sess.ExpiresAt = &exp
		}
		out.Session = &sess
	}
	if a.Profile != nil {
		profile := *a.Profile
		out.Profile = &profile
	}
	if a.RevenueCat.Features != nil {
		out.RevenueCat.Features = append([]string(nil), a.RevenueCat.Features...)
	}
	return out
}

// TODO: enable only in development!
func (a AuthSession) String() string {
	userID := "<nil>"
	if a.Session != nil {
		userID = a.Session.UserID
	}
	return fmt.Sprintf(
		"user=%s level=%s wallet=%v lens=%v tier=%s siwe=%v loading=%v",
		userID,
		a.AuthLevel(),
		a.Wallet.IsConnected,
		a.Lens.IsAuthenticated,
		a.RevenueCat.SubscriptionTier,
		a.SIWE.Verified,
		a.Status.IsLoading,
	)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
