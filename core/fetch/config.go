package fetch

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the retry, timeout and transport settings shared by the source adapters.
type Config struct {
	// MaxAttempts is the total number of attempts including the first one.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration `mapstructure:"base_delay" default:"5s"`
	// Factor multiplies the delay after every retry.
	Factor float64 `mapstructure:"factor" default:"2"`
	// Jitter is the randomization factor applied to each delay (0 disables it).
	Jitter float64 `mapstructure:"jitter" default:"0"`
	// MaxDelay caps a single wait.
	MaxDelay time.Duration `mapstructure:"max_delay" default:"2m"`
	// Timeout bounds one attempt.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
	// ProxyURL routes every request through an HTTP proxy when set.
	ProxyURL string `mapstructure:"proxy_url" default:""`
	// UserAgent is sent unless the request sets its own.
	UserAgent string `mapstructure:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"`
	// RatePerSecond limits request rate per fetcher (0 means unlimited).
	RatePerSecond float64 `mapstructure:"rate_per_second" default:"0"`
	// Burst is the token bucket size when rate limiting is on.
	Burst int `mapstructure:"burst" default:"1"`
}

// Options converts the config into fetcher options for one source.
func (c Config) Options(source string, log *zap.Logger) Options {
	return Options{
		Policy: Policy{
			MaxAttempts: c.MaxAttempts,
			BaseDelay:   c.BaseDelay,
			Factor:      c.Factor,
			Jitter:      c.Jitter,
			MaxDelay:    c.MaxDelay,
		},
		Timeout:       c.Timeout,
		ProxyURL:      c.ProxyURL,
		UserAgent:     c.UserAgent,
		RatePerSecond: c.RatePerSecond,
		Burst:         c.Burst,
		Source:        source,
		Logger:        log,
	}
}
