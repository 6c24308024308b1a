// Package fetch implements the retrying HTTP fetcher shared by the source adapters.
//
// Every attempt is classified into an Outcome:
//   - Success: any 2xx.
//   - Permanent: 404, returned at once as ErrNotFound.
//   - NeedsReauth: 401/403 when an Authenticator is configured; credentials are refreshed
//     and the request retried, which counts as an attempt.
//   - Retryable: transport errors, per-attempt timeouts, 429, 5xx and other 4xx.
//
// Retryable attempts follow an exponential schedule (cenkalti/backoff) of BaseDelay * Factor^n
// with optional jitter; once MaxAttempts is spent the error wraps ErrExhaustedRetries and
// the last cause.
//
// Credentials, proxy, headers and rate limits are injected through Options. A Fetcher keeps
// no per-call state, so one instance can serve concurrent adapters.
package fetch
