package unifiedauth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// AppConfig is a concrete Config implementation suitable for loading from
// the environment or a config file.
type AppConfig struct {
	SupabaseURL        string        `json:"supabase_url"`
	SupabaseAnonKey    string        `json:"supabase_anon_key"`
	SigningKey         string        `json:"signing_key"`
	TokenExpiration    int           `json:"token_expiration"`
	Issuer             string        `json:"issuer"`
	Audience           []string      `json:"audience"`
	RevenueCatAPIKey   string        `json:"revenuecat_api_key"`
	WalletPollInterval time.Duration `json:"wallet_poll_interval"`
}

var _ Config = (*AppConfig)(nil)

func (c *AppConfig) GetSupabaseURL() string      { return c.SupabaseURL }
func (c *AppConfig) GetSupabaseAnonKey() string  { return c.SupabaseAnonKey }
func (c *AppConfig) GetSigningKey() string       { return c.SigningKey }
func (c *AppConfig) GetIssuer() string           { return c.Issuer }
func (c *AppConfig) GetAudience() []string       { return c.Audience }
func (c *AppConfig) GetRevenueCatAPIKey() string { return c.RevenueCatAPIKey }

// GetTokenExpiration returns the minted token TTL in hours, defaulting to 1.
func (c *AppConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 1
	}
	return c.TokenExpiration
}

// GetWalletPollInterval returns the wallet poll cadence, defaulting to
// DefaultWalletPollInterval.
func (c *AppConfig) GetWalletPollInterval() time.Duration {
	if c.WalletPollInterval <= 0 {
		return DefaultWalletPollInterval
	}
	return c.WalletPollInterval
}

// Validate checks the fields every deployment needs. RevenueCat and wallet
// options are optional; the library degrades without them.
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SupabaseURL, validation.Required, is.URL),
		validation.Field(&c.SupabaseAnonKey, validation.Required),
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.TokenExpiration, validation.Min(0)),
	)
}
