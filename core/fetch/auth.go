package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Authenticator decorates outgoing requests with credentials and re-acquires them after a 401/403.
type Authenticator interface {
	Authorize(ctx context.Context, req *http.Request) error
	Refresh(ctx context.Context) error
}

// ErrStaticCredentials is returned by HeaderAuth.Refresh.
var ErrStaticCredentials = errors.New("static credentials cannot be refreshed")

// HeaderAuth sends fixed credential headers, e.g. X-Api-Token.
type HeaderAuth struct {
	Headers map[string]string
}

func (a HeaderAuth) Authorize(_ context.Context, req *http.Request) error {
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

func (a HeaderAuth) Refresh(context.Context) error {
	return ErrStaticCredentials
}

// TokenSource acquires a fresh access token.
type TokenSource func(ctx context.Context) (string, error)

// TokenAuth caches a token from Source and re-acquires it on Refresh.
type TokenAuth struct {
	// Header defaults to Authorization.
	Header string
	// Scheme is prefixed to the token, e.g. Bearer. Empty sends the raw token.
	Scheme string
	Source TokenSource

	mu    sync.Mutex
	token string
}

func (a *TokenAuth) Authorize(ctx context.Context, req *http.Request) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == "" {
		tok, err := a.Source(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire token: %w", err)
		}
		a.token = tok
	}

	header := a.Header
	if header == "" {
		header = "Authorization"
	}
	value := a.token
	if a.Scheme != "" {
		value = a.Scheme + " " + a.token
	}
	req.Header.Set(header, value)
	return nil
}

func (a *TokenAuth) Refresh(ctx context.Context) error {
	tok, err := a.Source(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	a.mu.Lock()
	a.token = tok
	a.mu.Unlock()
	return nil
}
