// Package supabase adapts the Supabase auth (GoTrue) service into the
// unifiedauth provider contracts.
package supabase

import (
	"github.com/goliatone/go-errors"
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
	"github.com/supabase-community/gotrue-go"
)

// Provider resolves Supabase access tokens into typed provider sessions and
// exposes the push source the orchestrator subscribes to. Session changes
// (login, refresh, logout) are fed in through Publish by whatever owns the
// Supabase client lifecycle.
type Provider struct {
	client gotrue.Client
	source *unifiedauth.PushAuthSource
	logger unifiedauth.Logger
}

// ProviderOption customizes provider construction.
type ProviderOption func(*Provider)

// WithProviderLogger overrides the default logger.
func WithProviderLogger(logger unifiedauth.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New builds a provider for the given project reference and anon key.
func New(projectReference, anonKey string, opts ...ProviderOption) *Provider {
	p := &Provider{
		client: gotrue.New(projectReference, anonKey),
		source: unifiedauth.NewPushAuthSource(),
		logger: unifiedauth.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Source returns the AuthStateSource for the orchestrator.
func (p *Provider) Source() unifiedauth.AuthStateSource {
	return p.source
}

// Publish pushes a session change to every orchestrator subscriber. Pass
// nil on logout.
func (p *Provider) Publish(session *unifiedauth.ProviderSession) {
	p.source.Publish(session)
}

// SessionFromToken resolves an access token to a typed session by asking
// GoTrue for the user it belongs to.
func (p *Provider) SessionFromToken(accessToken string) (*unifiedauth.ProviderSession, error) {
	authed := p.client.WithToken(accessToken)

	user, err := authed.GetUser()
	if err != nil {
		p.logger.Error("supabase user lookup failed: %v", err)
		return nil, errors.Wrap(err, errors.CategoryAuth, "failed to resolve user from access token")
	}

	return &unifiedauth.ProviderSession{
		AccessToken: accessToken,
		UserID:      user.ID.String(),
		Email:       user.Email,
	}, nil
}
