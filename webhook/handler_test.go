package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "webhook-secret"

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newApp(store *unifiedauth.Store) *fiber.App {
	app := fiber.New()
	handler := NewHandler(testSecret, store)
	app.Post("/webhooks/revenuecat", handler.Handle)
	return app
}

func post(t *testing.T, app *fiber.App, payload []byte, signature string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/revenuecat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := unifiedauth.NewStore()
	app := newApp(store)

	payload := []byte(`{"event":{"type":"RENEWAL","app_user_id":"user-1","entitlement_ids":["premium"]}}`)

	resp := post(t, app, payload, "sha256=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, app, payload, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.False(t, store.Snapshot().RevenueCat.IsAvailable,
		"rejected events must not touch the store")
}

func TestWebhookRejectsBadJSON(t *testing.T) {
	store := unifiedauth.NewStore()
	app := newApp(store)

	payload := []byte("{not json")
	resp := post(t, app, payload, sign(testSecret, payload))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookPurchaseActivatesSubscription(t *testing.T) {
	store := unifiedauth.NewStore()
	app := newApp(store)

	payload := []byte(`{"event":{"type":"INITIAL_PURCHASE","app_user_id":"user-1","entitlement_ids":["premium"]},"api_version":"1.0"}`)

	resp := post(t, app, payload, sign(testSecret, payload))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snapshot := store.Snapshot()
	assert.True(t, snapshot.RevenueCat.IsAvailable)
	assert.True(t, snapshot.RevenueCat.IsLoggedIn)
	assert.Equal(t, unifiedauth.TierPremium, snapshot.RevenueCat.SubscriptionTier)
	assert.True(t, snapshot.RevenueCat.IsSubscriptionActive)
	assert.Equal(t, []string{"premium"}, snapshot.RevenueCat.Features)
}

func TestWebhookPicksHighestTier(t *testing.T) {
	store := unifiedauth.NewStore()
	app := newApp(store)

	payload := []byte(`{"event":{"type":"PRODUCT_CHANGE","app_user_id":"user-1","entitlement_ids":["premium","pro"]}}`)

	resp := post(t, app, payload, sign(testSecret, payload))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, unifiedauth.TierPro, store.Snapshot().RevenueCat.SubscriptionTier)
}

func TestWebhookExpirationDowngrades(t *testing.T) {
	store := unifiedauth.NewStore()
	store.SetRevenueCatState(true, true, unifiedauth.TierPro, true, []string{"pro"})
	app := newApp(store)

	payload := []byte(`{"event":{"type":"EXPIRATION","app_user_id":"user-1"}}`)

	resp := post(t, app, payload, sign(testSecret, payload))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snapshot := store.Snapshot()
	assert.Equal(t, unifiedauth.TierBasic, snapshot.RevenueCat.SubscriptionTier)
	assert.False(t, snapshot.RevenueCat.IsSubscriptionActive)
	assert.Empty(t, snapshot.RevenueCat.Features)
}

func TestWebhookTestEventIsAcknowledgedOnly(t *testing.T) {
	store := unifiedauth.NewStore()
	app := newApp(store)

	payload := []byte(`{"event":{"type":"TEST","app_user_id":"user-1"}}`)

	resp := post(t, app, payload, sign(testSecret, payload))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, store.Snapshot().RevenueCat.IsAvailable)
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	store := unifiedauth.NewStore()
	app := newApp(store)

	payload := []byte(`{"event":{"type":"TRANSFER","app_user_id":"user-1"}}`)

	resp := post(t, app, payload, sign(testSecret, payload))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, store.Snapshot().RevenueCat.IsAvailable)
}
