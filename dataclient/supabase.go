package dataclient

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-errors"
	"github.com/supabase-community/supabase-go"
)

// SupabaseClient routes CRUD calls through the Supabase PostgREST surface,
// authenticating with the session's access token. Endpoints are table names.
type SupabaseClient struct {
	client *supabase.Client
}

// NewSupabaseClient builds a table-backed client bound to one access token.
// Each session token gets its own client; the selector rebuilds it when the
// token changes.
func NewSupabaseClient(projectURL, anonKey, accessToken string) (*SupabaseClient, error) {
	client, err := supabase.NewClient(projectURL, anonKey, &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to initialize supabase client")
	}

	return &SupabaseClient{client: client}, nil
}

func (c *SupabaseClient) Get(_ context.Context, endpoint string) ([]byte, error) {
	data, _, err := c.client.From(endpoint).Select("*", "", false).Execute()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *SupabaseClient) Post(_ context.Context, endpoint string, body []byte) ([]byte, error) {
	data, _, err := c.client.From(endpoint).Insert(json.RawMessage(body), false, "", "representation", "").Execute()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *SupabaseClient) Put(_ context.Context, endpoint string, body []byte) ([]byte, error) {
	data, _, err := c.client.From(endpoint).Update(json.RawMessage(body), "representation", "").Execute()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *SupabaseClient) Delete(_ context.Context, endpoint string) ([]byte, error) {
	data, _, err := c.client.From(endpoint).Delete("", "").Execute()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *SupabaseClient) Kind() Kind {
	return KindSupabase
}

var _ Client = (*SupabaseClient)(nil)
