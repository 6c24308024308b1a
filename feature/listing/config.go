package listing

import "time"

// Config holds the venue listing (public calendar) settings. A venue profile may
// override the endpoint.
type Config struct {
	// Endpoint is the paginated shows URL.
	Endpoint string `mapstructure:"endpoint" default:""`
	// PageSize is sent as the limit query parameter.
	PageSize int `mapstructure:"page_size" default:"100"`
	// MaxPages guards against a feed that never reports its last page.
	MaxPages int `mapstructure:"max_pages" default:"50"`
	// Timeout bounds one page request.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
}
