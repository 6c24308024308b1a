// Package metrics holds the Prometheus collectors shared by the fetcher, the reconciliation
// driver and the dispatcher, and the fiber handler serving them on /metrics.
package metrics
