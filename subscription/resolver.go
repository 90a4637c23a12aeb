package subscription

import (
	"context"
	"sync"

	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
)

// Status is the entitlement snapshot the resolver gates on.
type Status struct {
	Tier     unifiedauth.Tier `json:"tier"`
	IsActive bool             `json:"is_active"`
	Features []string         `json:"features,omitempty"`
}

// FallbackStatus is what every lookup degrades to when the upstream status
// cannot be fetched. Tests depend on this exact value.
func FallbackStatus() Status {
	return Status{Tier: unifiedauth.TierBasic, IsActive: false}
}

// StatusFetcher retrieves the live subscription status for an app user.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, appUserID string) (Status, error)
}

// StatusFetcherFunc adapts a function into a StatusFetcher.
type StatusFetcherFunc func(ctx context.Context, appUserID string) (Status, error)

// FetchStatus satisfies the StatusFetcher interface.
func (f StatusFetcherFunc) FetchStatus(ctx context.Context, appUserID string) (Status, error) {
	if f == nil {
		return FallbackStatus(), nil
	}
	return f(ctx, appUserID)
}

// ResolverOption customizes resolver construction.
type ResolverOption func(*Resolver)

// WithResolverLogger overrides the default logger.
func WithResolverLogger(logger unifiedauth.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDevOverride force-grants every feature. Development use only.
func WithDevOverride(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.devOverride = enabled
	}
}

// Resolver caches the subscription status and answers feature-access
// lookups against the static tier table. Fetch failures never surface to
// callers: the resolver degrades to the basic-tier fallback and logs the
// degradation, trading correctness for availability.
type Resolver struct {
	fetcher     StatusFetcher
	logger      unifiedauth.Logger
	devOverride bool

	mu     sync.RWMutex
	status Status
}

// NewResolver builds a resolver starting from the basic-tier fallback.
func NewResolver(fetcher StatusFetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		logger:  unifiedauth.DefaultLogger(),
		status:  FallbackStatus(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Refresh fetches the live status for the given app user and caches it.
// On any failure the cache is set to the fallback; the error is swallowed.
// The refreshed status is returned for convenience.
func (r *Resolver) Refresh(ctx context.Context, appUserID string) Status {
	status := FallbackStatus()

	if r.fetcher == nil {
		r.logger.Warn("subscription refresh skipped: no fetcher configured, degrading to basic tier")
	} else if fetched, err := r.fetcher.FetchStatus(ctx, appUserID); err != nil {
		r.logger.Warn("subscription status fetch failed, degrading to basic tier: %v", err)
	} else {
		status = fetched
	}

	r.mu.Lock()
	r.status = status
	r.mu.Unlock()

	return status
}

// Status returns the cached subscription status.
func (r *Resolver) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// HasFeatureAccess reports whether the current tier may use the feature.
// Unknown features are denied for every tier. The development override
// grants everything.
func (r *Resolver) HasFeatureAccess(feature string) bool {
	if r.devOverride {
		return true
	}
	return tierPermitted(feature, r.Status().Tier)
}

// Syncer adapts the resolver into the orchestrator's SubscriptionSyncer so
// a refresh runs at start and pushes the outcome into the store.
func (r *Resolver) Syncer(store *unifiedauth.Store) unifiedauth.SubscriptionSyncer {
	return unifiedauth.SubscriptionSyncerFunc(func(ctx context.Context) error {
		snapshot := store.Snapshot()
		status := r.Refresh(ctx, snapshot.UserID)
		store.SetRevenueCatState(true, snapshot.UserID != "", status.Tier, status.IsActive, status.Features)
		return nil
	})
}
