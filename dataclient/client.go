// Package dataclient selects the transport used for app data access based
// on which credential the session currently carries: a Supabase session
// token, a SIWE-minted JWT, or nothing.
package dataclient

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Kind identifies which client shape the selector produced.
type Kind string

const (
	KindSupabase        Kind = "supabase"
	KindJWT             Kind = "jwt"
	KindUnauthenticated Kind = "unauthenticated"
)

// Client is the uniform CRUD surface over whichever transport was selected.
// Transport errors are returned as-is, not mapped into a taxonomy.
type Client interface {
	Get(ctx context.Context, endpoint string) ([]byte, error)
	Post(ctx context.Context, endpoint string, body []byte) ([]byte, error)
	Put(ctx context.Context, endpoint string, body []byte) ([]byte, error)
	Delete(ctx context.Context, endpoint string) ([]byte, error)
	Kind() Kind
}

// ErrNoAuthentication is returned by every method of the unauthenticated
// client. The Message field carries the literal contract string callers
// surface to users; Error() wraps it with the category/code prefix.
var ErrNoAuthentication = errors.New("No authentication available. Please sign in.", errors.CategoryAuth).
	WithTextCode("NO_AUTHENTICATION").
	WithCode(errors.CodeUnauthorized)

type unauthenticatedClient struct{}

// Unauthenticated returns the client whose every method fails with
// ErrNoAuthentication.
func Unauthenticated() Client {
	return unauthenticatedClient{}
}

func (unauthenticatedClient) Get(context.Context, string) ([]byte, error) {
	return nil, ErrNoAuthentication
}

func (unauthenticatedClient) Post(context.Context, string, []byte) ([]byte, error) {
	return nil, ErrNoAuthentication
}

func (unauthenticatedClient) Put(context.Context, string, []byte) ([]byte, error) {
	return nil, ErrNoAuthentication
}

func (unauthenticatedClient) Delete(context.Context, string) ([]byte, error) {
	return nil, ErrNoAuthentication
}

func (unauthenticatedClient) Kind() Kind {
	return KindUnauthenticated
}
