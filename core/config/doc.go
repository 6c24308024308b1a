// Package config provides configuration management for the event reconciler.
//
// Settings come from struct-tag defaults, an optional .env file and environment
// variables, in increasing order of precedence. Nested keys map to upper-case
// variables with dots replaced by underscores (reconcile.skip_days -> RECONCILE_SKIP_DAYS).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, crawl timeout
//   - Storage: S3/MinIO credentials and bucket
//   - Log: level and format
//   - Database: work item store (mysql, sqlite, postgres)
//   - Fetch: retry policy, timeouts, proxy, rate limit
//   - Reconcile: window, skip days, thresholds, keywords, timezone
//   - Inventory, Listing: feed endpoints and credentials
//   - Venues: catalog location and cache TTL
//   - Dispatch: redis stream
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Reconcile.SkipDays)
package config
