package unifiedauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionContextRoundTrip(t *testing.T) {
	session := AuthSession{
		Session: &ProviderSession{UserID: "user-1"},
		Wallet:  WalletState{Address: "0xabc", IsConnected: true},
	}

	ctx := WithSessionContext(context.Background(), session)

	got, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.Session.UserID)

	_, ok = SessionFromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &JWTClaims{Address: "0xabc"}

	ctx := WithClaimsContext(context.Background(), claims)

	got, ok := GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "0xabc", got.WalletAddress())

	_, ok = GetClaims(context.Background())
	assert.False(t, ok)
}

func TestLevelAtLeast(t *testing.T) {
	full := WithSessionContext(context.Background(), AuthSession{
		Session: &ProviderSession{UserID: "user-1"},
		SIWE:    SIWEState{Verified: true},
	})

	assert.True(t, LevelAtLeast(full, AuthLevelFull))
	assert.True(t, LevelAtLeast(full, AuthLevelEmail))

	empty := context.Background()
	assert.True(t, LevelAtLeast(empty, AuthLevelNone))
	assert.False(t, LevelAtLeast(empty, AuthLevelEmail))
}

func TestAppConfigValidate(t *testing.T) {
	valid := &AppConfig{
		SupabaseURL:     "https://proj.supabase.co",
		SupabaseAnonKey: "anon-key",
		SigningKey:      "test-signing-key-at-least-32-bytes!",
	}
	require.NoError(t, valid.Validate())

	assert.Equal(t, 1, valid.GetTokenExpiration())
	assert.Equal(t, DefaultWalletPollInterval, valid.GetWalletPollInterval())

	missing := &AppConfig{SupabaseURL: "https://proj.supabase.co"}
	assert.Error(t, missing.Validate())

	shortKey := &AppConfig{
		SupabaseURL:     "https://proj.supabase.co",
		SupabaseAnonKey: "anon-key",
		SigningKey:      "too-short",
	}
	assert.Error(t, shortKey.Validate())
}
