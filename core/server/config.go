package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to trigger crawls over HTTP.
	ApiKey string `mapstructure:"api_key" default:""`
	// CrawlTimeoutSeconds bounds a crawl triggered through the HTTP endpoint.
	CrawlTimeoutSeconds int `mapstructure:"crawl_timeout_seconds" default:"600"`
}

// CrawlTimeout returns the crawl deadline, falling back to ten minutes.
func (c Config) CrawlTimeout() time.Duration {
	if c.CrawlTimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.CrawlTimeoutSeconds) * time.Second
}

// AuthEnabled reports whether requests must carry the api key.
func (c Config) AuthEnabled() bool {
	return c.ApiKey != ""
}
