package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"event-reconciler/core/metrics"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Policy is the retry schedule: delay = BaseDelay * Factor^attempt, capped at MaxDelay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	Jitter      float64
	MaxDelay    time.Duration
}

// DefaultPolicy returns three attempts starting at 5s and doubling.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 5 * time.Second, Factor: 2, MaxDelay: 2 * time.Minute}
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = 5 * time.Second
	}
	b.Multiplier = p.Factor
	if b.Multiplier < 1 {
		b.Multiplier = 2
	}
	b.RandomizationFactor = p.Jitter
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = 2 * time.Minute
	}
	b.Reset()
	return b
}

// Options configures a Fetcher. Everything a request needs is injected here.
type Options struct {
	Policy    Policy
	Timeout   time.Duration
	ProxyURL  string
	UserAgent string
	// Headers are sent on every request.
	Headers       http.Header
	Auth          Authenticator
	RatePerSecond float64
	Burst         int
	// Source labels logs and metrics (inventory, listing).
	Source     string
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Request is a single logical call; the fetcher may issue it several times.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte
	// Timeout overrides the per-attempt timeout.
	Timeout time.Duration
}

// Response is a fully read successful response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
}

// Fetcher issues HTTP requests with classification and bounded exponential retry.
// It holds no per-request state and is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	log     *zap.Logger
}

// New builds a Fetcher. No proxy is used unless Options.ProxyURL is set.
func New(opts Options) (*Fetcher, error) {
	if opts.Policy.MaxAttempts <= 0 {
		opts.Policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Source == "" {
		opts.Source = "default"
	}

	client := opts.HTTPClient
	if client == nil {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   opts.Timeout,
			ExpectContinueTimeout: 1 * time.Second,
		}
		if opts.ProxyURL != "" {
			proxy, err := url.Parse(opts.ProxyURL)
			if err != nil || proxy.Host == "" {
				return nil, fmt.Errorf("invalid proxy url %q", opts.ProxyURL)
			}
			transport.Proxy = http.ProxyURL(proxy)
		}
		client = &http.Client{Transport: transport}
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Fetcher{
		client:  client,
		opts:    opts,
		limiter: limiter,
		log:     log.With(zap.String("source", opts.Source)),
	}, nil
}

// Do issues req until it succeeds, fails permanently or runs out of attempts.
// Exhaustion returns an error matching both ErrExhaustedRetries and the last cause.
func (f *Fetcher) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	target, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var (
		attempts int
		lastErr  error
		resp     *Response
	)

	operation := func() (*Response, error) {
		attempts++
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
			}
		}

		start := time.Now()
		resp, err := f.attempt(ctx, req, target)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		outcome := Classify(status, err, f.opts.Auth != nil)
		metrics.ObserveFetch(f.opts.Source, outcome.String(), time.Since(start))

		switch outcome {
		case Success:
			resp.Attempts = attempts
			return resp, nil
		case Permanent:
			return nil, backoff.Permanent(newStatusError(status, req.URL, resp.Body))
		case NeedsReauth:
			lastErr = newStatusError(status, req.URL, resp.Body)
			f.log.Info("Credentials rejected, refreshing", zap.Int("status", status), zap.Int("attempt", attempts))
			if rerr := f.opts.Auth.Refresh(ctx); rerr != nil {
				return nil, backoff.Permanent(fmt.Errorf("%w: %w", lastErr, rerr))
			}
			return nil, lastErr
		default:
			if err == nil {
				err = newStatusError(status, req.URL, resp.Body)
			}
			lastErr = err
			return nil, err
		}
	}

	resp, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(f.opts.Policy.backOff()),
		backoff.WithMaxTries(uint(f.opts.Policy.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			f.log.Warn("Fetch attempt failed, retrying",
				zap.String("url", req.URL),
				zap.Int("attempt", attempts),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	)
	if err == nil {
		return resp, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fetch %s cancelled after %d attempts: %w", req.URL, attempts, ctxErr)
	}
	if lastErr == nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrExhaustedRetries, attempts, lastErr)
}

// GetJSON issues a GET and decodes the body into out, keeping numbers as json.Number.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, query url.Values, out any) (*Response, error) {
	resp, err := f.Do(ctx, Request{Method: http.MethodGet, URL: rawURL, Query: query})
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return resp, fmt.Errorf("failed to decode response from %s: %w", rawURL, err)
	}
	return resp, nil
}

func buildURL(raw string, query url.Values) (string, error) {
	target, err := url.Parse(raw)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return "", fmt.Errorf("invalid url %q", raw)
	}
	if len(query) > 0 {
		q := target.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}
	return target.String(), nil
}

func (f *Fetcher) attempt(ctx context.Context, req Request, target string) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.opts.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, vs := range f.opts.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" && f.opts.UserAgent != "" {
		httpReq.Header.Set("User-Agent", f.opts.UserAgent)
	}
	if f.opts.Auth != nil {
		if err := f.opts.Auth.Authorize(attemptCtx, httpReq); err != nil {
			return nil, err
		}
	}

	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}
