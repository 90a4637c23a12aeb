package unifiedauth

import (
	"context"
	"sync"
	"time"
)

// Field identifies an AuthSession sub-state for scoped subscriptions.
type Field string

const (
	FieldSession    Field = "session"
	FieldProfile    Field = "profile"
	FieldWallet     Field = "wallet"
	FieldLens       Field = "lens"
	FieldRevenueCat Field = "revenuecat"
	FieldSIWE       Field = "siwe"
	FieldStatus     Field = "status"
)

// Subscriber receives a snapshot of the aggregate after a field change.
type Subscriber func(session AuthSession)

// StoreOption customizes Store construction.
type StoreOption func(*Store)

// WithStoreLogger overrides the default logger.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithStoreActivitySink sets the ActivitySink used to publish session events.
func WithStoreActivitySink(sink ActivitySink) StoreOption {
	return func(s *Store) {
		s.activitySink = normalizeActivitySink(sink)
	}
}

// Store holds the AuthSession aggregate behind named, total setters.
// Setters never fail; value-equality governs notification suppression, so
// setting a field to its current value is a no-op. State lives only in
// memory and is rebuilt from provider callbacks on every process start.
type Store struct {
	mu           sync.RWMutex
	state        AuthSession
	subscribers  map[Field]map[int64]Subscriber
	nextSubID    int64
	now          func() time.Time
	logger       Logger
	activitySink ActivitySink
}

// NewStore creates a store with all-empty defaults.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		state:        AuthSession{},
		subscribers:  map[Field]map[int64]Subscriber{},
		now:          time.Now,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Snapshot returns a deep copy of the current aggregate.
func (s *Store) Snapshot() AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn for notifications whenever the given field's value
// changes. The returned function removes the subscription.
func (s *Store) Subscribe(field Field, fn Subscriber) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribers[field] == nil {
		s.subscribers[field] = map[int64]Subscriber{}
	}
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[field][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers[field], id)
	}
}

// SetSession stores the external session and derives UserID and
// Status.IsAuthenticated from it. Passing nil records a logged-out state.
func (s *Store) SetSession(session *ProviderSession) {
	s.mu.Lock()
	if s.state.Session.equal(session) {
		s.mu.Unlock()
		return
	}

	s.state.Session = session
	if session != nil {
		s.state.UserID = session.UserID
	} else {
		s.state.UserID = ""
	}
	s.state.Status.IsAuthenticated = session != nil && session.UserID != ""
	s.state.Status.LastUpdated = s.now()

	snapshot, subs := s.collectLocked(FieldSession, FieldStatus)
	s.mu.Unlock()

	s.emit(ActivityEventSessionUpdated, snapshot.UserID, FieldSession, nil)
	s.notify(snapshot, subs)
}

// SetProfile stores the app-level user record.
func (s *Store) SetProfile(profile *Profile) {
	s.mu.Lock()
	if s.state.Profile.equal(profile) {
		s.mu.Unlock()
		return
	}

	s.state.Profile = profile
	s.state.Status.LastUpdated = s.now()

	snapshot, subs := s.collectLocked(FieldProfile, FieldStatus)
	s.mu.Unlock()

	s.notify(snapshot, subs)
}

// SetWallet overwrites the wallet sub-state. Calling it twice with identical
// arguments does not bump Status.LastUpdated again.
func (s *Store) SetWallet(address string, chainID int64, isConnected bool) {
	next := WalletState{Address: address, ChainID: chainID, IsConnected: isConnected}

	s.mu.Lock()
	if s.state.Wallet == next {
		s.mu.Unlock()
		return
	}

	s.state.Wallet = next
	s.state.Status.LastUpdated = s.now()

	snapshot, subs := s.collectLocked(FieldWallet, FieldStatus)
	s.mu.Unlock()

	s.emit(ActivityEventWalletUpdated, snapshot.UserID, FieldWallet, map[string]any{
		"address":   address,
		"chain_id":  chainID,
		"connected": isConnected,
	})
	s.notify(snapshot, subs)
}

// SetLensAuthenticated flips the Lens Protocol auth flag.
func (s *Store) SetLensAuthenticated(authenticated bool) {
	s.mu.Lock()
	if s.state.Lens.IsAuthenticated == authenticated {
		s.mu.Unlock()
		return
	}

	s.state.Lens.IsAuthenticated = authenticated
	s.state.Status.LastUpdated = s.now()

	snapshot, subs := s.collectLocked(FieldLens, FieldStatus)
	s.mu.Unlock()

	s.emit(ActivityEventLensUpdated, snapshot.UserID, FieldLens, map[string]any{
		"authenticated": authenticated,
	})
	s.notify(snapshot, subs)
}

// SetRevenueCatState overwrites the subscription entitlement sub-state.
func (s *Store) SetRevenueCatState(isAvailable, isLoggedIn bool, tier Tier, isActive bool, features []string) {
	next := RevenueCatState{
		IsAvailable:          isAvailable,
		IsLoggedIn:           isLoggedIn,
		SubscriptionTier:     tier,
		IsSubscriptionActive: isActive,
		Features:             features,
	}

	s.mu.Lock()
	if s.state.RevenueCat.equal(next) {
		s.mu.Unlock()
		return
	}

	s.state.RevenueCat = next
	s.state.Status.LastUpdated = s.now()

	snapshot, subs := s.collectLocked(FieldRevenueCat, FieldStatus)
	s.mu.Unlock()

	s.emit(ActivityEventSubscriptionSynced, snapshot.UserID, FieldRevenueCat, map[string]any{
		"tier":   tier,
		"active": isActive,
	})
	s.notify(snapshot, subs)
}

// SetSiweState records the SIWE verification outcome. An empty jwt means no
// third-party token was minted.
func (s *Store) SetSiweState(verified bool, jwt string) {
	next := SIWEState{Verified: verified, JWT: jwt}

	s.mu.Lock()
	if s.state.SIWE == next {
		s.mu.Unlock()
		return
	}

	s.state.SIWE = next
	s.state.Status.LastUpdated = s.now()

	snapshot, subs := s.collectLocked(FieldSIWE, FieldStatus)
	s.mu.Unlock()

	if verified {
		s.emit(ActivityEventSIWEVerified, snapshot.UserID, FieldSIWE, nil)
	}
	s.notify(snapshot, subs)
}

// SetLoading flips the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	if s.state.Status.IsLoading == loading {
		s.mu.Unlock()
		return
	}

	s.state.Status.IsLoading = loading
	s.state.Status.LastUpdated = s.now()

	snapshot, subs := s.collectLocked(FieldStatus)
	s.mu.Unlock()

	s.notify(snapshot, subs)
}

// Clear resets the aggregate to its documented initial defaults.
func (s *Store) Clear() {
	s.mu.Lock()
	userID := s.state.UserID
	s.state = AuthSession{}

	snapshot, subs := s.collectLocked(
		FieldSession, FieldProfile, FieldWallet, FieldLens,
		FieldRevenueCat, FieldSIWE, FieldStatus,
	)
	s.mu.Unlock()

	s.emit(ActivityEventSessionCleared, userID, FieldSession, nil)
	s.notify(snapshot, subs)
}

// collectLocked gathers the subscribers of the changed fields plus a
// snapshot, deduplicating callbacks registered on multiple fields. Callers
// must hold s.mu.
func (s *Store) collectLocked(fields ...Field) (AuthSession, []Subscriber) {
	seen := map[int64]struct{}{}
	var subs []Subscriber
	for _, field := range fields {
		for id, fn := range s.subscribers[field] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			subs = append(subs, fn)
		}
	}
	return s.state.clone(), subs
}

// notify runs callbacks outside the lock so subscribers may re-enter the store.
func (s *Store) notify(snapshot AuthSession, subs []Subscriber) {
	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) emit(eventType ActivityEventType, userID string, field Field, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Field:      field,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	sink := normalizeActivitySink(s.activitySink)
	if err := sink.Record(context.Background(), event); err != nil {
		s.logger.Warn("store activity sink error: %v", err)
	}
}
