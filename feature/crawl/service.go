package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"event-reconciler/core/fetch"
	"event-reconciler/core/match"
	"event-reconciler/core/normalize"
	"event-reconciler/core/reconcile"
	"event-reconciler/core/storage"
	"event-reconciler/feature/inventory"
	"event-reconciler/feature/listing"
	"event-reconciler/feature/venues"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Settings are the configuration sections a crawl needs.
type Settings struct {
	Reconcile reconcile.Config
	Fetch     fetch.Config
	Inventory inventory.Config
	Listing   listing.Config
}

// Catalog resolves venue profiles; *venues.Loader implements it.
type Catalog interface {
	Catalog(ctx context.Context) (*venues.Catalog, error)
	Lookup(ctx context.Context, name string) (venues.Profile, error)
}

// SourceFactory builds both feeds for one venue run.
type SourceFactory func(p venues.Profile, n normalize.Normalizer, logger *zap.Logger) (reconcile.Sources, error)

// RunOptions are the per-request overrides.
type RunOptions struct {
	DryRun bool
	// Days overrides the lookahead window when positive.
	Days int
	// Now pins the run clock; zero means time.Now.
	Now time.Time
}

// Service runs reconciliations for catalog venues.
type Service struct {
	settings Settings
	catalog  Catalog
	store    reconcile.Store
	reports  storage.Client
	bucket   string
	logger   *zap.Logger
	sources  SourceFactory
}

// NewService creates a crawl service. reports may be nil to skip report upload.
func NewService(settings Settings, catalog Catalog, store reconcile.Store, reports storage.Client, bucket string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		settings: settings,
		catalog:  catalog,
		store:    store,
		reports:  reports,
		bucket:   bucket,
		logger:   logger,
	}
	s.sources = s.httpSources
	return s
}

// Crawl runs one venue. Unknown venues return venues.ErrUnknownVenue and no report.
func (s *Service) Crawl(ctx context.Context, venue string, opts RunOptions) (*reconcile.Report, error) {
	profile, err := s.catalog.Lookup(ctx, venue)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, profile, opts)
}

// CrawlAll runs every active venue with at most Reconcile.Workers runs in flight.
// A failed venue does not stop the others; failures are joined into the returned error.
func (s *Service) CrawlAll(ctx context.Context, opts RunOptions) ([]*reconcile.Report, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	active := catalog.Active()

	workers := s.settings.Reconcile.Workers
	if workers <= 0 {
		workers = 1
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		errs    []error
		reports = make([]*reconcile.Report, len(active))
	)
	g.SetLimit(workers)
	for i, profile := range active {
		g.Go(func() error {
			report, err := s.run(ctx, profile, opts)
			reports[i] = report
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", profile.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return reports, errors.Join(errs...)
}

func (s *Service) run(ctx context.Context, profile venues.Profile, opts RunOptions) (*reconcile.Report, error) {
	rc, err := s.runContext(profile, opts)
	if err != nil {
		return nil, err
	}

	n := normalize.Normalizer{Location: rc.Location, Classifier: normalize.NewClassifier(rc.Keywords)}
	src, err := s.sources(profile, n, s.logger)
	if err != nil {
		return nil, fmt.Errorf("venue %s: %w", profile.Name, err)
	}

	report, err := reconcile.Run(ctx, rc, src, s.store)
	if report != nil {
		s.upload(ctx, report)
	}
	return report, err
}

// runContext merges the venue profile over the configured defaults.
func (s *Service) runContext(p venues.Profile, opts RunOptions) (reconcile.Context, error) {
	cfg := s.settings.Reconcile
	loc, err := p.Location(cfg.Timezone)
	if err != nil {
		return reconcile.Context{}, err
	}

	days := cfg.Days
	if p.LookaheadDays > 0 {
		days = p.LookaheadDays
	}
	if opts.Days > 0 {
		days = opts.Days
	}
	skipDays := cfg.SkipDays
	if p.SkipDays != nil {
		skipDays = *p.SkipDays
	}
	threshold := cfg.FuzzyThreshold
	if p.FuzzyThreshold > 0 {
		threshold = p.FuzzyThreshold
	}
	tolerance := cfg.Tolerance
	if p.Tolerance > 0 {
		tolerance = p.Tolerance
	}
	exactTime := cfg.ExactTime
	if p.ExactTime != nil {
		exactTime = *p.ExactTime
	}
	keywords := cfg.Keywords
	if len(p.Keywords) > 0 {
		keywords = p.Keywords
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)

	return reconcile.Context{
		RunID:    uuid.NewString(),
		Venue:    p.Name,
		Location: loc,
		From:     now,
		To:       now.AddDate(0, 0, days),
		Match: match.Options{
			Threshold: threshold,
			Tolerance: tolerance,
			ExactTime: exactTime,
		},
		SkipDays:        skipDays,
		Keywords:        keywords,
		Now:             now,
		DryRun:          opts.DryRun,
		DedupeByEventID: cfg.DedupeByEventID,
		Logger:          s.logger,
	}, nil
}

func (s *Service) httpSources(p venues.Profile, n normalize.Normalizer, logger *zap.Logger) (reconcile.Sources, error) {
	inv, err := inventory.New(s.settings.Inventory, s.settings.Fetch, p.InventoryName(), n, logger)
	if err != nil {
		return reconcile.Sources{}, err
	}
	lcfg := s.settings.Listing
	if p.ListingEndpoint != "" {
		lcfg.Endpoint = p.ListingEndpoint
	}
	lst, err := listing.New(lcfg, s.settings.Fetch, n, logger)
	if err != nil {
		return reconcile.Sources{}, err
	}
	return reconcile.Sources{Inventory: inv, Listing: lst}, nil
}

// ReportObject is the storage key of a run report.
func ReportObject(r *reconcile.Report) string {
	venue := strings.ToLower(strings.Join(strings.Fields(r.Venue), "-"))
	return fmt.Sprintf("reports/%s/%s.json", venue, r.RunID)
}

func (s *Service) upload(ctx context.Context, report *reconcile.Report) {
	if s.reports == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("Failed to encode run report", zap.String("run_id", report.RunID), zap.Error(err))
		return
	}
	if err := storage.WriteJSON(ctx, s.reports, s.bucket, ReportObject(report), data); err != nil {
		s.logger.Warn("Failed to upload run report", zap.String("run_id", report.RunID), zap.Error(err))
	}
}
