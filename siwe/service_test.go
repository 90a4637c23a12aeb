package siwe

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x1234567890AbcdEF1234567890aBcdef12345678"

func acceptingVerifier() SignatureVerifier {
	return SignatureVerifierFunc(func(context.Context, string, string, string) error {
		return nil
	})
}

func rejectingVerifier() SignatureVerifier {
	return SignatureVerifierFunc(func(context.Context, string, string, string) error {
		return ErrAddressMismatch
	})
}

func TestBuildAndParseMessage(t *testing.T) {
	message := BuildMessage(MessageParams{
		Domain:    "imperfectbreath.com",
		Address:   testAddress,
		URI:       "https://imperfectbreath.com",
		ChainID:   1,
		Nonce:     "abc123",
		IssuedAt:  "2025-06-01T12:00:00Z",
		Statement: "Sign-In with Ethereum to Imperfect Breath",
	})

	assert.True(t, strings.HasPrefix(message,
		"imperfectbreath.com wants you to sign in with your Ethereum account:\n"+testAddress+"\n\n"))
	assert.Contains(t, message, "Sign-In with Ethereum to Imperfect Breath\n")
	assert.Contains(t, message, "URI: https://imperfectbreath.com\n")
	assert.Contains(t, message, "Version: 1\n")
	assert.Contains(t, message, "Chain ID: 1\n")
	assert.Contains(t, message, "Nonce: abc123\n")
	assert.True(t, strings.HasSuffix(message, "Issued At: 2025-06-01T12:00:00Z"))

	address, nonce, err := ParseMessage(message)
	require.NoError(t, err)
	assert.Equal(t, testAddress, address)
	assert.Equal(t, "abc123", nonce)
}

func TestParseMessageErrors(t *testing.T) {
	_, _, err := ParseMessage("too\nshort")
	assert.ErrorIs(t, err, ErrMalformedMessage)

	noNonce := BuildMessage(MessageParams{
		Domain:   "imperfectbreath.com",
		Address:  testAddress,
		URI:      "https://imperfectbreath.com",
		ChainID:  1,
		IssuedAt: "2025-06-01T12:00:00Z",
	})
	_, _, err = ParseMessage(noNonce)
	assert.ErrorIs(t, err, ErrNonceMissing)
}

func TestChallengeIssuesSingleUseNonce(t *testing.T) {
	store := NewMemoryNonceStore()
	svc := NewService(store, acceptingVerifier())

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: testAddress})
	require.NoError(t, err)

	assert.Len(t, challenge.Nonce, 32)
	assert.Equal(t, "imperfectbreath.com", challenge.Domain)
	assert.Equal(t, "https://imperfectbreath.com", challenge.URI)
	assert.Equal(t, int64(1), challenge.ChainID)
	assert.Contains(t, challenge.Message, "Nonce: "+challenge.Nonce)

	record, err := store.Get(context.Background(), challenge.Nonce)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(testAddress), record.Address)
	assert.False(t, record.Used)
}

func TestChallengeRejectsBadAddress(t *testing.T) {
	svc := NewService(NewMemoryNonceStore(), acceptingVerifier())

	_, err := svc.Challenge(context.Background(), ChallengeRequest{Address: "vitalik.eth"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid Ethereum address")

	_, err = svc.Challenge(context.Background(), ChallengeRequest{Address: "0x123"})
	assert.Error(t, err)
}

func TestVerifyHappyPath(t *testing.T) {
	svc := NewService(NewMemoryNonceStore(), acceptingVerifier())

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: testAddress})
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), challenge.Message, "0xsignature")
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.True(t, result.Verified)
	assert.Equal(t, strings.ToLower(testAddress), result.Address)
	assert.Equal(t, challenge.Nonce, result.Nonce)
	assert.Empty(t, result.JWT, "no token service configured")
}

func TestVerifyMintsJWT(t *testing.T) {
	signingKey := []byte("test-signing-key-at-least-32-bytes!")
	tokens := unifiedauth.NewTokenService(signingKey, 1, unifiedauth.SIWEIssuer, jwt.ClaimStrings{unifiedauth.RoleAuthenticated})

	svc := NewService(NewMemoryNonceStore(), acceptingVerifier(), WithTokenService(tokens))

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: testAddress})
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), challenge.Message, "0xsignature")
	require.NoError(t, err)
	require.NotEmpty(t, result.JWT)

	claims, err := tokens.Validate(result.JWT)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(testAddress), claims.Subject())
	assert.Equal(t, unifiedauth.RoleAuthenticated, claims.Role())
}

func TestVerifyRejectsReusedNonce(t *testing.T) {
	svc := NewService(NewMemoryNonceStore(), acceptingVerifier())

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: testAddress})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), challenge.Message, "0xsignature")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), challenge.Message, "0xsignature")
	assert.ErrorIs(t, err, ErrNonceUsed)
}

func TestVerifyFailedSignatureDoesNotBurnNonce(t *testing.T) {
	store := NewMemoryNonceStore()
	svc := NewService(store, rejectingVerifier())

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: testAddress})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), challenge.Message, "0xbadsig")
	assert.ErrorIs(t, err, ErrAddressMismatch)

	record, err := store.Get(context.Background(), challenge.Nonce)
	require.NoError(t, err)
	assert.False(t, record.Used, "failed verification must not consume the nonce")
}

func TestVerifyRejectsUnknownNonce(t *testing.T) {
	svc := NewService(NewMemoryNonceStore(), acceptingVerifier())

	message := BuildMessage(MessageParams{
		Domain:   "imperfectbreath.com",
		Address:  testAddress,
		URI:      "https://imperfectbreath.com",
		ChainID:  1,
		Nonce:    "neverissued",
		IssuedAt: "2025-06-01T12:00:00Z",
	})

	_, err := svc.Verify(context.Background(), message, "0xsignature")
	assert.ErrorIs(t, err, ErrUnknownNonce)
}

func TestVerifyRejectsAddressMismatch(t *testing.T) {
	store := NewMemoryNonceStore()
	svc := NewService(store, acceptingVerifier())

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: testAddress})
	require.NoError(t, err)

	// rebuild the message with a different address but the issued nonce
	forged := BuildMessage(MessageParams{
		Domain:   challenge.Domain,
		Address:  "0xffffffffffffffffffffffffffffffffffffffff",
		URI:      challenge.URI,
		ChainID:  challenge.ChainID,
		Nonce:    challenge.Nonce,
		IssuedAt: challenge.IssuedAt,
	})

	_, err = svc.Verify(context.Background(), forged, "0xsignature")
	assert.ErrorIs(t, err, ErrAddressMismatch)
}

func TestMemoryNonceStoreExpiry(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := clock
	store := NewMemoryNonceStore(WithNonceClock(func() time.Time { return now }))

	record := NonceRecord{
		Address:   strings.ToLower(testAddress),
		IssuedAt:  clock,
		ExpiresAt: clock.Add(NonceTTL),
	}
	require.NoError(t, store.Save(context.Background(), "nonce-1", record))

	_, err := store.Get(context.Background(), "nonce-1")
	require.NoError(t, err)

	now = clock.Add(NonceTTL + time.Second)
	_, err = store.Get(context.Background(), "nonce-1")
	assert.ErrorIs(t, err, ErrNonceExpired)

	// the expired record was deleted on read
	_, err = store.Get(context.Background(), "nonce-1")
	assert.ErrorIs(t, err, ErrUnknownNonce)
}

func TestMemoryNonceStoreMarkUsed(t *testing.T) {
	store := NewMemoryNonceStore()

	record := NonceRecord{ExpiresAt: time.Now().Add(NonceTTL)}
	require.NoError(t, store.Save(context.Background(), "nonce-1", record))
	require.NoError(t, store.MarkUsed(context.Background(), "nonce-1"))

	got, err := store.Get(context.Background(), "nonce-1")
	require.NoError(t, err)
	assert.True(t, got.Used)

	assert.ErrorIs(t, store.MarkUsed(context.Background(), "missing"), ErrUnknownNonce)
}
