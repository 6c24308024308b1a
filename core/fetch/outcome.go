package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Outcome classifies a single HTTP attempt.
type Outcome int

const (
	// Success is any 2xx response.
	Success Outcome = iota
	// Permanent will not change on retry (404).
	Permanent
	// NeedsReauth means credentials were rejected and can be re-acquired.
	NeedsReauth
	// Retryable covers transport errors, timeouts, 429, 5xx and other 4xx.
	Retryable
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Permanent:
		return "permanent"
	case NeedsReauth:
		return "needs_reauth"
	default:
		return "retryable"
	}
}

var (
	// ErrNotFound is returned for a 404 without retrying.
	ErrNotFound = errors.New("resource not found")
	// ErrExhaustedRetries wraps the last cause once every attempt failed.
	ErrExhaustedRetries = errors.New("exhausted retries")
	// ErrUnauthorized is returned when credentials are rejected and cannot be refreshed.
	ErrUnauthorized = errors.New("unauthorized")
)

// Classify maps an attempt's status code or transport error to an Outcome.
// 401 and 403 only need reauth when the caller can re-acquire credentials.
func Classify(status int, err error, canReauth bool) Outcome {
	if err != nil {
		return Retryable
	}
	switch {
	case status >= 200 && status < 300:
		return Success
	case status == http.StatusNotFound:
		return Permanent
	case (status == http.StatusUnauthorized || status == http.StatusForbidden) && canReauth:
		return NeedsReauth
	default:
		return Retryable
	}
}

// StatusError describes a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
	kind       error
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

func newStatusError(status int, url string, body []byte) *StatusError {
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	se := &StatusError{StatusCode: status, URL: url, Body: snippet}
	switch status {
	case http.StatusNotFound:
		se.kind = ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		se.kind = ErrUnauthorized
	}
	return se
}
