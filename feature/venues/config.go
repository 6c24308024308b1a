package venues

import "time"

// Config selects where the venue catalog is read from.
type Config struct {
	// CatalogFile is a local yaml catalog, used when CatalogObject is empty or storage is disabled.
	CatalogFile string `mapstructure:"catalog_file" default:"venues.yaml"`
	// CatalogObject is the object name of the catalog in the storage bucket.
	CatalogObject string `mapstructure:"catalog_object" default:""`
	// CacheTTL is how long a loaded catalog is reused (0 disables caching).
	CacheTTL time.Duration `mapstructure:"cache_ttl" default:"5m"`
}
