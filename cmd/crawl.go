package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"event-reconciler/core/reconcile"
	"event-reconciler/feature/crawl"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	crawlVenue  string
	crawlAll    bool
	crawlDays   int
	crawlDryRun bool
	crawlJSON   bool
)

// crawlCmd runs reconciliation for one venue or every active venue.
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Reconcile a venue's listing against the inventory",
	Long: `Fetch both feeds for a venue, match listing performances to inventory events
and append the new pairs to events_to_process.

Examples:
  # One venue
  crawl --venue "Kennedy Center"

  # Plan only, nothing is written
  crawl --venue "Kennedy Center" --dry-run --json

  # Every active venue in the catalog
  crawl --all --days 45`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlVenue, "venue", "", "Venue name from the catalog")
	crawlCmd.Flags().BoolVar(&crawlAll, "all", false, "Crawl every active venue")
	crawlCmd.Flags().IntVar(&crawlDays, "days", 0, "Override the lookahead window in days")
	crawlCmd.Flags().BoolVar(&crawlDryRun, "dry-run", false, "Plan only, do not persist")
	crawlCmd.Flags().BoolVar(&crawlJSON, "json", false, "Print reports as JSON on stdout")
	crawlCmd.MarkFlagsMutuallyExclusive("venue", "all")
	crawlCmd.MarkFlagsOneRequired("venue", "all")

	RootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	store, closeStore, err := a.openStore(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to open work item store: %w", err)
	}
	defer closeStore()

	svc := a.crawlService(store)
	opts := crawl.RunOptions{DryRun: crawlDryRun, Days: crawlDays}

	var reports []*reconcile.Report
	if crawlAll {
		reports, err = svc.CrawlAll(ctx, opts)
	} else {
		var report *reconcile.Report
		report, err = svc.Crawl(ctx, crawlVenue, opts)
		if report != nil {
			reports = append(reports, report)
		}
	}

	for _, r := range reports {
		if r == nil {
			continue
		}
		if crawlJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(r); encErr != nil {
				return encErr
			}
			continue
		}
		printRunReport(a.log, r)
	}
	return err
}

// printRunReport prints a run summary using the logger.
func printRunReport(l *zap.Logger, r *reconcile.Report) {
	c := r.Counts
	fields := []zap.Field{
		zap.String("venue", r.Venue),
		zap.String("run_id", r.RunID),
		zap.String("status", string(r.Status)),
		zap.String("state", string(r.State)),
		zap.Bool("dry_run", r.DryRun),
		zap.Int("fetched_inventory", c.FetchedInventory),
		zap.Int("fetched_listing", c.FetchedListing),
		zap.Int("parse_failures", c.ParseFailures),
		zap.Int("excluded", c.Excluded),
		zap.Int("skipped_by_window", c.SkippedByWindow),
		zap.Int("matched", c.Matched),
		zap.Int("unmatched", c.Unmatched),
		zap.Int("ambiguous", c.Ambiguous),
		zap.Int("duplicates", c.Duplicates+c.InsertConflicts),
		zap.Int("persisted", c.Persisted),
		zap.Int64("duration_ms", r.DurationMS),
	}
	if r.Status == reconcile.StatusFailed {
		l.Error("Run report", append(fields, zap.String("error_kind", string(r.ErrorKind)), zap.String("error", r.Error))...)
		return
	}
	l.Info("Run report", fields...)

	// Show a sample of the new items (max 5)
	maxShow := min(5, len(r.Items))
	for _, it := range r.Items[:maxShow] {
		l.Info("Work item",
			zap.String("event_unique_id", it.EventUniqueID),
			zap.String("event_name", it.EventName),
			zap.Time("event_datetime", it.EventDatetime))
	}
	if len(r.Items) > maxShow {
		l.Info("Additional items not shown", zap.Int("count", len(r.Items)-maxShow))
	}
}
