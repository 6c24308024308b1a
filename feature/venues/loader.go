package venues

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"event-reconciler/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader reads the catalog from object storage or disk and caches it for CacheTTL.
type Loader struct {
	cfg    Config
	client storage.Client
	bucket string
	logger *zap.Logger

	mu      sync.RWMutex
	catalog *Catalog
	built   time.Time
	sf      singleflight.Group
}

// NewLoader creates a loader. client may be nil, in which case only CatalogFile is used.
func NewLoader(cfg Config, client storage.Client, bucket string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cfg: cfg, client: client, bucket: bucket, logger: logger}
}

func (l *Loader) fresh() (*Catalog, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.catalog == nil || l.cfg.CacheTTL <= 0 || time.Since(l.built) > l.cfg.CacheTTL {
		return nil, false
	}
	return l.catalog, true
}

// Catalog returns the cached catalog, reloading it once it has expired.
// Concurrent callers share a single reload.
func (l *Loader) Catalog(ctx context.Context) (*Catalog, error) {
	if c, ok := l.fresh(); ok {
		return c, nil
	}

	result, err, _ := l.sf.Do("catalog", func() (interface{}, error) {
		if c, ok := l.fresh(); ok {
			return c, nil
		}

		data, source, err := l.read(ctx)
		if err != nil {
			return nil, err
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}

		l.mu.Lock()
		l.catalog, l.built = c, time.Now()
		l.mu.Unlock()

		l.logger.Info("Venue catalog loaded", zap.String("source", source), zap.Int("venues", len(c.Venues)))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Catalog), nil
}

// Lookup is Catalog followed by Catalog.Lookup.
func (l *Loader) Lookup(ctx context.Context, name string) (Profile, error) {
	c, err := l.Catalog(ctx)
	if err != nil {
		return Profile{}, err
	}
	return c.Lookup(name)
}

// Invalidate drops the cached catalog.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.catalog = nil
	l.mu.Unlock()
}

func (l *Loader) read(ctx context.Context) ([]byte, string, error) {
	if l.client != nil && l.cfg.CatalogObject != "" {
		source := fmt.Sprintf("s3://%s/%s", l.bucket, l.cfg.CatalogObject)
		data, err := storage.ReadObject(ctx, l.client, l.bucket, l.cfg.CatalogObject)
		if err != nil {
			return nil, source, fmt.Errorf("failed to load venue catalog: %w", err)
		}
		return data, source, nil
	}

	data, err := os.ReadFile(l.cfg.CatalogFile)
	if err != nil {
		return nil, l.cfg.CatalogFile, fmt.Errorf("failed to load venue catalog: %w", err)
	}
	return data, l.cfg.CatalogFile, nil
}
