// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework used by the crawl trigger endpoint.
//
// # Context Awareness
//
// Two scopes are supported:
//   - WithRayID attaches the request RayID from a Fiber context, so every log line produced while
//     serving one HTTP request can be correlated.
//   - ForRun attaches run_id and venue, so every line produced by one reconciliation run (fetch
//     retries, parse diagnostics, match decisions, persistence) can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	runLog := logger.ForRun(log, report.RunID, "Kennedy Center Opera House")
//	runLog.Info("Run finished", zap.Int("persisted", report.Counts.Persisted))
package logger
