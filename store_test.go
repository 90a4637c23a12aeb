package unifiedauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type capturingSink struct {
	events []ActivityEvent
}

func (s *capturingSink) Record(_ context.Context, event ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestStoreDefaults(t *testing.T) {
	store := NewStore()
	snapshot := store.Snapshot()

	assert.Nil(t, snapshot.Session)
	assert.Empty(t, snapshot.UserID)
	assert.Nil(t, snapshot.Profile)
	assert.False(t, snapshot.Wallet.IsConnected)
	assert.False(t, snapshot.Lens.IsAuthenticated)
	assert.False(t, snapshot.RevenueCat.IsAvailable)
	assert.False(t, snapshot.SIWE.Verified)
	assert.False(t, snapshot.Status.IsAuthenticated)
	assert.False(t, snapshot.Status.IsLoading)
	assert.True(t, snapshot.Status.LastUpdated.IsZero())
	assert.Equal(t, AuthLevelNone, snapshot.AuthLevel())
}

func TestStoreSetSessionDerivesAuthState(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(WithStoreClock(clock.Now))

	store.SetSession(&ProviderSession{
		AccessToken: "supa-token",
		UserID:      "user-123",
		Email:       "sol@example.com",
	})

	snapshot := store.Snapshot()
	require.NotNil(t, snapshot.Session)
	assert.Equal(t, "user-123", snapshot.UserID)
	assert.True(t, snapshot.Status.IsAuthenticated)
	assert.Equal(t, clock.Now(), snapshot.Status.LastUpdated)
	assert.Equal(t, AuthLevelEmail, snapshot.AuthLevel())

	store.SetSession(nil)

	snapshot = store.Snapshot()
	assert.Nil(t, snapshot.Session)
	assert.Empty(t, snapshot.UserID)
	assert.False(t, snapshot.Status.IsAuthenticated)
}

func TestStoreSessionWithoutUserIDIsNotAuthenticated(t *testing.T) {
	store := NewStore()

	store.SetSession(&ProviderSession{AccessToken: "anon-token"})

	snapshot := store.Snapshot()
	require.NotNil(t, snapshot.Session)
	assert.False(t, snapshot.Status.IsAuthenticated)
}

func TestStoreSettersAreIdempotent(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(WithStoreClock(clock.Now))

	store.SetWallet("0xabc", 1, true)
	first := store.Snapshot().Status.LastUpdated

	clock.Advance(time.Minute)
	store.SetWallet("0xabc", 1, true)

	assert.Equal(t, first, store.Snapshot().Status.LastUpdated,
		"identical write must not bump LastUpdated")

	clock.Advance(time.Minute)
	store.SetWallet("0xabc", 137, true)
	assert.NotEqual(t, first, store.Snapshot().Status.LastUpdated)
}

func TestStoreSetRevenueCatState(t *testing.T) {
	store := NewStore()

	store.SetRevenueCatState(true, true, TierPremium, true, []string{"premium"})

	snapshot := store.Snapshot()
	assert.True(t, snapshot.RevenueCat.IsAvailable)
	assert.True(t, snapshot.RevenueCat.IsLoggedIn)
	assert.Equal(t, TierPremium, snapshot.RevenueCat.SubscriptionTier)
	assert.True(t, snapshot.RevenueCat.IsSubscriptionActive)
	assert.Equal(t, []string{"premium"}, snapshot.RevenueCat.Features)
}

func TestStoreClearResetsToDefaults(t *testing.T) {
	store := NewStore()

	store.SetSession(&ProviderSession{AccessToken: "t", UserID: "user-1"})
	store.SetProfile(&Profile{ID: "user-1", Username: "sol"})
	store.SetWallet("0xabc", 1, true)
	store.SetLensAuthenticated(true)
	store.SetRevenueCatState(true, true, TierPro, true, []string{"pro"})
	store.SetSiweState(true, "jwt")
	store.SetLoading(true)

	store.Clear()

	snapshot := store.Snapshot()
	assert.Equal(t, AuthSession{}, snapshot)
	assert.Equal(t, AuthLevelNone, snapshot.AuthLevel())
}

func TestStoreSubscribeNotifiesOnChange(t *testing.T) {
	store := NewStore()

	var walletCalls int
	var last AuthSession
	unsubscribe := store.Subscribe(FieldWallet, func(session AuthSession) {
		walletCalls++
		last = session
	})

	store.SetWallet("0xabc", 1, true)
	require.Equal(t, 1, walletCalls)
	assert.True(t, last.Wallet.IsConnected)
	assert.Equal(t, "0xabc", last.Wallet.Address)

	// unchanged write is suppressed
	store.SetWallet("0xabc", 1, true)
	assert.Equal(t, 1, walletCalls)

	// unrelated field does not notify wallet subscribers
	store.SetLensAuthenticated(true)
	assert.Equal(t, 1, walletCalls)

	unsubscribe()
	store.SetWallet("0xdef", 1, true)
	assert.Equal(t, 1, walletCalls)
}

func TestStoreStatusSubscriberSeesEveryChange(t *testing.T) {
	store := NewStore()

	var statusCalls int
	store.Subscribe(FieldStatus, func(AuthSession) {
		statusCalls++
	})

	store.SetWallet("0xabc", 1, true)
	store.SetLensAuthenticated(true)
	store.SetLoading(true)

	assert.Equal(t, 3, statusCalls)
}

func TestStoreSeparateRegistrationsEachFire(t *testing.T) {
	store := NewStore()

	calls := 0
	fn := func(AuthSession) { calls++ }

	// both fields change on SetWallet; each registration fires once
	store.Subscribe(FieldWallet, fn)
	store.Subscribe(FieldStatus, fn)

	store.SetWallet("0xabc", 1, true)

	assert.Equal(t, 2, calls)
}

func TestStoreSnapshotIsIsolated(t *testing.T) {
	store := NewStore()
	store.SetSession(&ProviderSession{AccessToken: "t", UserID: "user-1"})
	store.SetRevenueCatState(true, true, TierPremium, true, []string{"premium"})

	snapshot := store.Snapshot()
	snapshot.Session.AccessToken = "mutated"
	snapshot.RevenueCat.Features[0] = "mutated"

	fresh := store.Snapshot()
	assert.Equal(t, "t", fresh.Session.AccessToken)
	assert.Equal(t, []string{"premium"}, fresh.RevenueCat.Features)
}

func TestStoreEmitsActivityEvents(t *testing.T) {
	sink := &capturingSink{}
	store := NewStore(WithStoreActivitySink(sink))

	store.SetSession(&ProviderSession{AccessToken: "t", UserID: "user-1"})
	store.SetWallet("0xabc", 1, true)
	store.SetSiweState(true, "jwt")
	store.Clear()

	require.Len(t, sink.events, 4)
	assert.Equal(t, ActivityEventSessionUpdated, sink.events[0].EventType)
	assert.Equal(t, "user-1", sink.events[0].UserID)
	assert.Equal(t, ActivityEventWalletUpdated, sink.events[1].EventType)
	assert.Equal(t, ActivityEventSIWEVerified, sink.events[2].EventType)
	assert.Equal(t, ActivityEventSessionCleared, sink.events[3].EventType)
	assert.Equal(t, "user-1", sink.events[3].UserID)
}

func TestStoreSiweClearedWithoutVerifyEmitsNothing(t *testing.T) {
	sink := &capturingSink{}
	store := NewStore(WithStoreActivitySink(sink))

	store.SetSiweState(true, "jwt")
	store.SetSiweState(false, "")

	require.Len(t, sink.events, 1)
	assert.Equal(t, ActivityEventSIWEVerified, sink.events[0].EventType)
}
