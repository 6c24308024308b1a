package cmd

import (
	"context"
	"fmt"

	"event-reconciler/core/config"
	"event-reconciler/core/database"
	"event-reconciler/core/logger"
	"event-reconciler/core/reconcile"
	"event-reconciler/core/storage"
	"event-reconciler/feature/crawl"
	"event-reconciler/feature/venues"
	"event-reconciler/feature/workitems"

	"go.uber.org/zap"
)

// workStore is what the commands need from a work item store.
type workStore interface {
	reconcile.Store
	ListActive(ctx context.Context, venue string, limit int) ([]reconcile.WorkItem, error)
}

// app holds what every command builds from the configuration.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	storage storage.Client
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, log: l}
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.storage = client
	}
	return a, nil
}

// openStore connects the configured work item store. With migrate set the table is
// created when missing; otherwise an existing table is only checked.
func (a *app) openStore(ctx context.Context, migrate bool) (workStore, func(), error) {
	if a.cfg.Database.Driver == "postgres" {
		pool, err := database.NewPool(ctx, a.cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := workitems.NewPgStore(pool)
		if migrate {
			if err := store.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return store, pool.Close, nil
	}

	db, err := database.Connect(a.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	store := workitems.NewGormStore(db)
	if migrate || a.cfg.Database.Driver == "sqlite" {
		err = store.AutoMigrate()
	} else {
		err = store.VerifySchema()
	}
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return store, closeDB, nil
}

func (a *app) venueLoader() *venues.Loader {
	return venues.NewLoader(a.cfg.Venues, a.storage, a.cfg.Storage.Bucket, a.log)
}

func (a *app) crawlService(store reconcile.Store) *crawl.Service {
	settings := crawl.Settings{
		Reconcile: a.cfg.Reconcile,
		Fetch:     a.cfg.Fetch,
		Inventory: a.cfg.Inventory,
		Listing:   a.cfg.Listing,
	}
	return crawl.NewService(settings, a.venueLoader(), store, a.storage, a.cfg.Storage.Bucket, a.log)
}
