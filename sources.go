package unifiedauth

import (
	"context"
	"sync"
)

// AuthStateSource pushes external session changes (login, refresh, logout)
// into a callback. A nil session means logged out.
type AuthStateSource interface {
	Subscribe(ctx context.Context, fn func(session *ProviderSession)) (unsubscribe func(), err error)
}

// WalletSource reports the current wallet connection status. It is polled,
// not pushed; the orchestrator suppresses unchanged reads.
type WalletSource interface {
	Status(ctx context.Context) (WalletState, error)
}

// WalletSourceFunc adapts a function into a WalletSource.
type WalletSourceFunc func(ctx context.Context) (WalletState, error)

// Status satisfies the WalletSource interface.
func (f WalletSourceFunc) Status(ctx context.Context) (WalletState, error) {
	if f == nil {
		return WalletState{}, nil
	}
	return f(ctx)
}

// SubscriptionSyncer refreshes entitlement state into the store.
type SubscriptionSyncer interface {
	Sync(ctx context.Context) error
}

// SubscriptionSyncerFunc adapts a function into a SubscriptionSyncer.
type SubscriptionSyncerFunc func(ctx context.Context) error

// Sync satisfies the SubscriptionSyncer interface.
func (f SubscriptionSyncerFunc) Sync(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// PushAuthSource is an AuthStateSource fed by explicit Publish calls. It is
// the bridge for providers that surface auth changes through their own
// callback mechanisms (e.g. a Supabase token refresh loop).
type PushAuthSource struct {
	mu        sync.Mutex
	nextSubID int64
	subs      map[int64]func(*ProviderSession)
}

// NewPushAuthSource returns an empty push source.
func NewPushAuthSource() *PushAuthSource {
	return &PushAuthSource{subs: map[int64]func(*ProviderSession){}}
}

// Subscribe satisfies the AuthStateSource interface.
func (p *PushAuthSource) Subscribe(_ context.Context, fn func(session *ProviderSession)) (func(), error) {
	if fn == nil {
		return func() {}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextSubID++
	id := p.nextSubID
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}, nil
}

// Publish fans a session change out to every subscriber.
func (p *PushAuthSource) Publish(session *ProviderSession) {
	p.mu.Lock()
	subs := make([]func(*ProviderSession), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

var _ AuthStateSource = (*PushAuthSource)(nil)
