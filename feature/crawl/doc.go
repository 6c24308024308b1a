// Package crawl wires venue profiles, source adapters and the work item store into
// reconciliation runs.
//
// A run's Context is built fresh from the configured defaults with the venue profile
// layered on top, so runs share nothing but the store. The Service backs both the
// crawl command and the HTTP endpoints:
//
//	POST /crawl/:venue?dry_run=true&days=14
//	POST /crawl
//	GET  /venues
//
// When object storage is enabled every report is uploaded as reports/<venue>/<run_id>.json.
package crawl
