package dataclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const defaultJWTClientTimeout = 30 * time.Second

// JWTClient is the bearer-token REST client used when only a SIWE-minted
// JWT is available. Endpoints are paths appended to the proxy base URL.
type JWTClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// JWTClientOption customizes JWT client construction.
type JWTClientOption func(*JWTClient)

// WithJWTHTTPClient overrides the default HTTP client.
func WithJWTHTTPClient(httpClient *http.Client) JWTClientOption {
	return func(c *JWTClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewJWTClient builds a REST client against the authenticated proxy.
func NewJWTClient(baseURL, token string, opts ...JWTClientOption) *JWTClient {
	c := &JWTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultJWTClientTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

func (c *JWTClient) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *JWTClient) Post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

func (c *JWTClient) Put(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPut, endpoint, body)
}

func (c *JWTClient) Delete(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil)
}

func (c *JWTClient) Kind() Kind {
	return KindJWT
}

func (c *JWTClient) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(endpoint, "/"), reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("request failed", errors.CategoryExternal).
			WithTextCode("UPSTREAM_ERROR").
			WithMetadata(map[string]any{
				"status":   resp.StatusCode,
				"endpoint": endpoint,
			})
	}

	return data, nil
}

var _ Client = (*JWTClient)(nil)
