// Package server holds the HTTP server configuration.
//
// The start command serves the crawl trigger, health and metrics endpoints; this package
// only defines the port, the api key guarding POST /crawl/:venue and the deadline applied
// to a crawl started over HTTP.
package server
