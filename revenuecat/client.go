// Package revenuecat is a thin client for the RevenueCat subscribers API,
// mapping entitlements to the subscription tiers the app gates on.
package revenuecat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/goliatone/go-errors"
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
	"github.com/imperfectbreath/go-unifiedauth/subscription"
)

const (
	defaultBaseURL = "https://api.revenuecat.com/v1"
	defaultTimeout = 15 * time.Second
)

// ErrSubscriberFetch is returned when the subscribers API call fails.
var ErrSubscriberFetch = errors.New("failed to fetch subscriber status", errors.CategoryExternal).
	WithTextCode("REVENUECAT_FETCH_FAILED")

// Client talks to the RevenueCat REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     unifiedauth.Logger
	now        func() time.Time
}

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (useful for tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger unifiedauth.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ClientOption {
	return func(c *Client) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewClient builds a client authenticated with the secret API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     unifiedauth.DefaultLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

type subscriberResponse struct {
	Subscriber struct {
		Entitlements map[string]entitlement `json:"entitlements"`
	} `json:"subscriber"`
}

type entitlement struct {
	ExpiresDate       *time.Time `json:"expires_date"`
	ProductIdentifier string     `json:"product_identifier"`
}

func (e entitlement) activeAt(now time.Time) bool {
	return e.ExpiresDate == nil || e.ExpiresDate.After(now)
}

// FetchStatus implements subscription.StatusFetcher. The tier is the
// highest-ranked active entitlement; no active entitlements means basic and
// inactive.
func (c *Client) FetchStatus(ctx context.Context, appUserID string) (subscription.Status, error) {
	endpoint := c.baseURL + "/subscribers/" + url.PathEscape(appUserID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return subscription.FallbackStatus(), errors.Wrap(err, errors.CategoryInternal, "failed to build subscriber request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return subscription.FallbackStatus(), errors.Wrap(err, ErrSubscriberFetch.Category, ErrSubscriberFetch.Message).WithTextCode(ErrSubscriberFetch.TextCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return subscription.FallbackStatus(), ErrSubscriberFetch.WithMetadata(map[string]any{
			"status":      resp.StatusCode,
			"app_user_id": appUserID,
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return subscription.FallbackStatus(), errors.Wrap(err, ErrSubscriberFetch.Category, ErrSubscriberFetch.Message).WithTextCode(ErrSubscriberFetch.TextCode)
	}

	var payload subscriberResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return subscription.FallbackStatus(), errors.Wrap(err, errors.CategoryExternal, "failed to decode subscriber response")
	}

	return c.statusFromEntitlements(payload.Subscriber.Entitlements), nil
}

func (c *Client) statusFromEntitlements(entitlements map[string]entitlement) subscription.Status {
	now := c.now()
	status := subscription.Status{Tier: unifiedauth.TierBasic}

	var active []string
	for key, ent := range entitlements {
		if !ent.activeAt(now) {
			continue
		}
		active = append(active, key)
		if tier, ok := unifiedauth.ParseTier(key); ok && unifiedauth.TierIsAtLeast(tier, status.Tier) {
			status.Tier = tier
		}
	}

	sort.Strings(active)
	status.Features = active
	status.IsActive = len(active) > 0

	return status
}

var _ subscription.StatusFetcher = (*Client)(nil)
