// Package webhook receives RevenueCat server notifications and pushes the
// resulting subscription state into the auth store.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
)

// SignatureHeader carries the HMAC of the raw body, hex encoded with a
// sha256= prefix.
const SignatureHeader = "X-Webhook-Signature"

// Event is the notification envelope payload.
type Event struct {
	Type           string   `json:"type"`
	AppUserID      string   `json:"app_user_id"`
	EntitlementIDs []string `json:"entitlement_ids"`
	ProductID      string   `json:"product_id"`
	EventTimestamp int64    `json:"event_timestamp_ms"`
}

type envelope struct {
	Event      Event  `json:"event"`
	APIVersion string `json:"api_version"`
}

// Event types RevenueCat delivers. Anything else is acknowledged and
// ignored.
const (
	EventInitialPurchase = "INITIAL_PURCHASE"
	EventRenewal         = "RENEWAL"
	EventUncancellation  = "UNCANCELLATION"
	EventProductChange   = "PRODUCT_CHANGE"
	EventCancellation    = "CANCELLATION"
	EventExpiration      = "EXPIRATION"
	EventBillingIssue    = "BILLING_ISSUE"
	EventTest            = "TEST"
)

// Handler verifies and applies subscription notifications.
type Handler struct {
	secret []byte
	store  *unifiedauth.Store
	logger unifiedauth.Logger
}

// HandlerOption customizes handler construction.
type HandlerOption func(*Handler)

// WithHandlerLogger overrides the default logger.
func WithHandlerLogger(logger unifiedauth.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler builds a handler that writes through to the given store.
func NewHandler(secret string, store *unifiedauth.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		secret: []byte(secret),
		store:  store,
		logger: unifiedauth.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// Handle is the Fiber handler for the webhook endpoint.
func (h *Handler) Handle(c *fiber.Ctx) error {
	body := c.Body()

	if !h.verifySignature(body, c.Get(SignatureHeader)) {
		h.logger.Warn("webhook rejected: invalid signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON payload",
		})
	}

	event := env.Event
	h.logger.Info("webhook received %s event for %s", event.Type, event.AppUserID)

	switch event.Type {
	case EventInitialPurchase, EventRenewal, EventUncancellation, EventProductChange:
		h.applyActive(event)
	case EventCancellation, EventExpiration, EventBillingIssue:
		h.applyInactive(event)
	case EventTest:
		return c.JSON(fiber.Map{"status": "acknowledged", "event": event.Type})
	default:
		return c.JSON(fiber.Map{"status": "ignored", "event": event.Type})
	}

	return c.JSON(fiber.Map{"status": "applied", "event": event.Type})
}

func (h *Handler) verifySignature(payload []byte, signature string) bool {
	if len(h.secret) == 0 {
		return false
	}
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *Handler) applyActive(event Event) {
	tier := tierFromEntitlements(event.EntitlementIDs)
	features := append([]string(nil), event.EntitlementIDs...)
	sort.Strings(features)

	h.store.SetRevenueCatState(true, event.AppUserID != "", tier, true, features)
}

func (h *Handler) applyInactive(event Event) {
	h.store.SetRevenueCatState(true, event.AppUserID != "", unifiedauth.TierBasic, false, nil)
}

// tierFromEntitlements picks the highest tier named by the entitlement ids.
func tierFromEntitlements(ids []string) unifiedauth.Tier {
	tier := unifiedauth.TierBasic
	for _, id := range ids {
		candidate, ok := unifiedauth.ParseTier(id)
		if !ok {
			continue
		}
		if unifiedauth.TierIsAtLeast(candidate, tier) {
			tier = candidate
		}
	}
	return tier
}
