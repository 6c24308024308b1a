// Package venues holds the venue catalog: one profile per crawled venue with its
// timezone, matching thresholds and listing endpoint.
package venues
