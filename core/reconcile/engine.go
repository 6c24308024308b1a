package reconcile

import (
	"context"
	"errors"
	"time"

	"event-reconciler/core/logger"
	"event-reconciler/core/match"
	"event-reconciler/core/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLookahead is the fetch window used when Context.To is unset.
const DefaultLookahead = 30 * 24 * time.Hour

// Run reconciles one venue over one window: fetch both feeds, normalize, filter, match,
// dedupe against the store and append the new work items.
//
// The report is nil only when a collaborator is missing. On error its Status is FAILED and nothing was
// written: a source failure aborts before any store access, and a failed insert is rolled
// back as a whole. Running twice with the same inputs persists nothing the second time.
func Run(ctx context.Context, rc Context, src Sources, store Store) (*Report, error) {
	rc = rc.withDefaults()
	if src.Inventory == nil || src.Listing == nil || store == nil {
		return nil, errors.New("reconcile: both sources and a store are required")
	}

	report := &Report{
		RunID:      rc.RunID,
		Venue:      rc.Venue,
		DryRun:     rc.DryRun,
		WindowFrom: rc.From,
		WindowTo:   rc.To,
		StartedAt:  time.Now(),
	}
	rc.Logger.Info("Run started",
		zap.Time("from", rc.From),
		zap.Time("to", rc.To),
		zap.Int("skip_days", rc.SkipDays),
		zap.Int("fuzzy_threshold", rc.Match.Threshold),
		zap.Duration("tolerance", rc.Match.Tolerance),
		zap.Bool("dry_run", rc.DryRun))

	plan, err := BuildPlan(ctx, rc, src, store, report)
	if err != nil {
		return finish(rc, report, err)
	}
	report.Items = plan.Items

	if rc.DryRun {
		rc.Logger.Info("Dry run, skipping persistence", zap.Int("planned", len(plan.Items)))
		return finish(rc, report, nil)
	}

	if err := ApplyPlan(ctx, rc, store, plan, report); err != nil {
		report.Items = nil
		return finish(rc, report, err)
	}
	return finish(rc, report, nil)
}

func finish(rc Context, report *Report, err error) (*Report, error) {
	report.FinishedAt = time.Now()
	elapsed := report.FinishedAt.Sub(report.StartedAt)
	report.DurationMS = elapsed.Milliseconds()

	if err != nil {
		report.Status = StatusFailed
		report.ErrorKind = KindOf(err)
		report.Error = err.Error()
		rc.Logger.Error("Run failed",
			zap.String("state", string(report.State)),
			zap.String("kind", string(report.ErrorKind)),
			zap.Error(err))
	} else {
		report.Status = StatusDone
		report.State = StateDone
		rc.Logger.Info("Run finished",
			zap.Int("fetched_inventory", report.Counts.FetchedInventory),
			zap.Int("fetched_listing", report.Counts.FetchedListing),
			zap.Int("excluded", report.Counts.Excluded),
			zap.Int("skipped_by_window", report.Counts.SkippedByWindow),
			zap.Int("matched", report.Counts.Matched),
			zap.Int("duplicates", report.Counts.Duplicates+report.Counts.InsertConflicts),
			zap.Int("persisted", report.Counts.Persisted),
			zap.Duration("elapsed", elapsed))
	}

	metrics.ObserveRun(report.Venue, string(report.Status), elapsed, map[string]int{
		"fetched_inventory": report.Counts.FetchedInventory,
		"fetched_listing":   report.Counts.FetchedListing,
		"parse_failures":    report.Counts.ParseFailures,
		"excluded":          report.Counts.Excluded,
		"skipped_by_window": report.Counts.SkippedByWindow,
		"matched":           report.Counts.Matched,
		"unmatched":         report.Counts.Unmatched,
		"ambiguous":         report.Counts.Ambiguous,
		"duplicates":        report.Counts.Duplicates + report.Counts.InsertConflicts,
		"persisted":         report.Counts.Persisted,
	})
	return report, err
}

func (rc Context) withDefaults() Context {
	if rc.RunID == "" {
		rc.RunID = uuid.NewString()
	}
	if rc.Location == nil {
		rc.Location = time.UTC
	}
	if rc.Now.IsZero() {
		rc.Now = time.Now()
	}
	rc.Now = rc.Now.In(rc.Location)
	if rc.From.IsZero() {
		rc.From = rc.Now
	}
	if rc.To.IsZero() {
		rc.To = rc.From.Add(DefaultLookahead)
	}
	if rc.Match == (match.Options{}) {
		rc.Match = match.DefaultOptions()
	}
	rc.Logger = logger.ForRun(rc.Logger, rc.RunID, rc.Venue)
	return rc
}
