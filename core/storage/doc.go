// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client, which talks to both AWS S3 and self-hosted MinIO. The crawler
// keeps two kinds of objects there: the venue catalog (a yaml document read on startup and
// refreshed on a TTL) and JSON run reports written after every crawl.
//
// The Client interface is narrow on purpose so tests can swap in core/storage/mocks.
//
//	client, err := storage.NewClient(cfg.Storage)
//	data, err := storage.ReadObject(ctx, client, cfg.Storage.Bucket, "config/venues.yaml")
package storage
