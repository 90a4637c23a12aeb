package dataclient

import (
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
)

// SelectorOption customizes selector construction.
type SelectorOption func(*Selector)

// WithSelectorLogger overrides the default logger.
func WithSelectorLogger(logger unifiedauth.Logger) SelectorOption {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJWTClientOptions forwards options to the JWT clients the selector builds.
func WithJWTClientOptions(opts ...JWTClientOption) SelectorOption {
	return func(s *Selector) {
		s.jwtOpts = opts
	}
}

// Selector picks the client shape for a session snapshot with strict
// precedence: Supabase token, then SIWE JWT, then the rejecting client.
// There is no merging and no cross-credential fallback within one call.
type Selector struct {
	projectURL string
	anonKey    string
	proxyURL   string
	jwtOpts    []JWTClientOption
	logger     unifiedauth.Logger
}

// NewSelector configures the selector with both transports' endpoints.
func NewSelector(projectURL, anonKey, proxyURL string, opts ...SelectorOption) *Selector {
	s := &Selector{
		projectURL: projectURL,
		anonKey:    anonKey,
		proxyURL:   proxyURL,
		logger:     unifiedauth.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// For returns the client for the given snapshot. Clients are built fresh on
// every call and bound to the snapshot's credential; callers wanting reuse
// should hold the returned client for the lifetime of that credential.
func (s *Selector) For(session unifiedauth.AuthSession) Client {
	if token := session.SupabaseAccessToken(); token != "" {
		client, err := NewSupabaseClient(s.projectURL, s.anonKey, token)
		if err != nil {
			s.logger.Error("supabase client init failed: %v", err)
			return Unauthenticated()
		}
		return client
	}

	if jwt := session.SIWEJWT(); jwt != "" {
		return NewJWTClient(s.proxyURL, jwt, s.jwtOpts...)
	}

	return Unauthenticated()
}
