// Package dispatch hands persisted work items to the downstream scrapers.
//
// It reads rows with status active that are not yet listed and appends each to a
// redis stream. The stream entry carries the unique id and the full item as JSON.
package dispatch
