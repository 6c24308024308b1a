package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "event_reconciler"

var (
	// FetchAttempts counts HTTP attempts by source and classified outcome.
	FetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "HTTP attempts issued by the retrying fetcher, by outcome",
	}, []string{"source", "outcome"})

	// FetchDuration observes the latency of a single attempt.
	FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Latency of a single fetch attempt",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	// Runs counts finished reconciliation runs by terminal status.
	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Reconciliation runs by venue and final status",
	}, []string{"venue", "status"})

	// RunEvents counts events per pipeline stage.
	RunEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "run_events_total",
		Help:      "Events seen by each reconciliation stage",
	}, []string{"venue", "stage"})

	// RunDuration observes end-to-end run time.
	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a reconciliation run",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"venue"})

	// Dispatched counts work items enqueued downstream.
	Dispatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatched_total",
		Help:      "Work items published to the downstream stream",
	})
)

func init() {
	prometheus.MustRegister(FetchAttempts, FetchDuration, Runs, RunEvents, RunDuration, Dispatched)
}

// ObserveFetch records one attempt.
func ObserveFetch(source, outcome string, elapsed time.Duration) {
	FetchAttempts.WithLabelValues(source, outcome).Inc()
	FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRun records a finished run and its per-stage counts.
func ObserveRun(venue, status string, elapsed time.Duration, stages map[string]int) {
	Runs.WithLabelValues(venue, status).Inc()
	RunDuration.WithLabelValues(venue).Observe(elapsed.Seconds())
	for stage, n := range stages {
		if n > 0 {
			RunEvents.WithLabelValues(venue, stage).Add(float64(n))
		}
	}
}

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
