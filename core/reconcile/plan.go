package reconcile

import (
	"context"
	"errors"
	"time"

	"event-reconciler/core/match"
	"event-reconciler/core/normalize"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BuildPlan runs FETCHING through DEDUPING and records counts in report.
// It writes nothing. A source failure returns a *SourceError, a failed store lookup a *PersistenceError.
func BuildPlan(ctx context.Context, rc Context, src Sources, store Store, report *Report) (*Plan, error) {
	log := rc.Logger

	// FETCHING
	report.State = StateFetching
	var invRes, lstRes normalize.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := src.Inventory.ListEvents(gctx, rc.From, rc.To)
		if err != nil {
			return asSourceError(normalize.Inventory, err)
		}
		invRes = res
		return nil
	})
	g.Go(func() error {
		res, err := src.Listing.ListEvents(gctx, rc.From, rc.To)
		if err != nil {
			return asSourceError(normalize.Listing, err)
		}
		lstRes = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// NORMALIZING
	report.State = StateNormalizing
	classifier := normalize.NewClassifier(rc.Keywords)
	inventory := prepare(invRes, classifier, report, log)
	listing := prepare(lstRes, classifier, report, log)
	report.Counts.FetchedInventory = len(invRes.Events) + countParseFailures(invRes)
	report.Counts.FetchedListing = len(lstRes.Events) + countParseFailures(lstRes)

	// FILTERING
	report.State = StateFiltering
	cutoff := SkipCutoff(rc.Now, rc.SkipDays, rc.Location)
	inventory = filterWindow(inventory, rc.Now, cutoff, report)
	listing = filterWindow(listing, rc.Now, cutoff, report)
	log.Debug("Filtered skip window",
		zap.Time("cutoff", cutoff),
		zap.Int("inventory", len(inventory)),
		zap.Int("listing", len(listing)))

	// MATCHING
	report.State = StateMatching
	res := match.Match(inventory, listing, rc.Match)
	report.Counts.Matched = len(res.Pairs)
	report.Counts.Unmatched = len(res.Unmatched)
	report.Counts.Ambiguous = len(res.Ambiguous)
	for _, miss := range res.Unmatched {
		log.Debug("No match",
			zap.String("kind", string(NoMatch)),
			zap.String("listing", miss.Listing.String()),
			zap.String("reason", string(miss.Reason)),
			zap.Duration("best_delta", miss.BestDelta),
			zap.Int("best_score", miss.BestScore))
	}
	for _, amb := range res.Ambiguous {
		log.Info("Ambiguous match resolved by order",
			zap.String("kind", string(AmbiguousMatch)),
			zap.String("listing", amb.Listing.String()),
			zap.String("chosen", amb.Chosen.ExternalID),
			zap.Int("candidates", len(amb.Candidates)),
			zap.Duration("delta", amb.Delta))
	}

	// DEDUPING
	report.State = StateDeduping
	items := make([]WorkItem, 0, len(res.Pairs))
	seen := make(map[string]struct{}, len(res.Pairs))
	for _, p := range res.Pairs {
		item := NewWorkItem(rc.Venue, p, rc.Location)
		if _, dup := seen[item.EventUniqueID]; dup {
			report.Counts.Duplicates++
			continue
		}
		seen[item.EventUniqueID] = struct{}{}
		items = append(items, item)
	}

	if len(items) > 0 {
		uniqueIDs := make([]string, 0, len(items))
		eventIDs := make([]string, 0, len(items))
		for _, item := range items {
			uniqueIDs = append(uniqueIDs, item.EventUniqueID)
			eventIDs = append(eventIDs, item.EventID)
		}
		existing, err := store.ExistingKeys(ctx, uniqueIDs, eventIDs)
		if err != nil {
			return nil, asPersistenceError("read existing keys", err)
		}
		fresh := items[:0]
		for _, item := range items {
			if existing.Has(item, rc.DedupeByEventID) {
				report.Counts.Duplicates++
				log.Debug("Duplicate, skipped",
					zap.String("kind", string(DuplicateKey)),
					zap.String("event_unique_id", item.EventUniqueID))
				continue
			}
			fresh = append(fresh, item)
		}
		items = fresh
	}

	return &Plan{Pairs: res.Pairs, Items: items}, nil
}

// ApplyPlan runs PERSISTING. The batch is written atomically; conflicts on the unique
// key are counted, not returned.
func ApplyPlan(ctx context.Context, rc Context, store Store, plan *Plan, report *Report) error {
	report.State = StatePersisting
	if len(plan.Items) == 0 {
		rc.Logger.Info("No new work items to persist")
		return nil
	}

	res, err := store.InsertBatch(ctx, plan.Items)
	if err != nil {
		return asPersistenceError("insert work items", err)
	}
	report.Counts.Persisted = res.Inserted
	report.Counts.InsertConflicts = res.Duplicates
	rc.Logger.Info("Persisted work items",
		zap.Int("inserted", res.Inserted),
		zap.Int("conflicts", res.Duplicates))
	return nil
}

// prepare drops duplicate external ids (first kept) and excluded events.
func prepare(res normalize.Result, classifier *normalize.Classifier, report *Report, log *zap.Logger) []normalize.Event {
	report.Diagnostics = append(report.Diagnostics, res.Diagnostics...)
	report.Counts.ParseFailures += countParseFailures(res)

	out := make([]normalize.Event, 0, len(res.Events))
	seen := make(map[string]struct{}, len(res.Events))
	for _, ev := range res.Events {
		if _, dup := seen[ev.ExternalID]; dup {
			report.Counts.DuplicateIDs++
			report.Diagnostics = append(report.Diagnostics, normalize.Diagnostic{
				Kind:       normalize.DuplicateID,
				Source:     ev.Source,
				ExternalID: ev.ExternalID,
				Detail:     "duplicate external id in one fetch, first kept",
			})
			continue
		}
		seen[ev.ExternalID] = struct{}{}

		if !ev.Excluded {
			ev.Excluded, ev.ExcludeReason = classifier.Classify(ev.DisplayTitle)
		}
		if ev.Excluded {
			report.Counts.Excluded++
			log.Debug("Excluded", zap.String("event", ev.String()), zap.String("reason", ev.ExcludeReason))
			continue
		}
		out = append(out, ev)
	}
	return out
}

func filterWindow(events []normalize.Event, now, cutoff time.Time, report *Report) []normalize.Event {
	out := events[:0]
	for _, ev := range events {
		if !InWindow(ev, now, cutoff) {
			report.Counts.SkippedByWindow++
			continue
		}
		out = append(out, ev)
	}
	return out
}

func countParseFailures(res normalize.Result) int {
	n := 0
	for _, d := range res.Diagnostics {
		if d.Kind == normalize.ParseFailure {
			n++
		}
	}
	return n
}

func asSourceError(source normalize.Source, err error) error {
	var se *SourceError
	if errors.As(err, &se) {
		return err
	}
	return &SourceError{Source: source, Err: err}
}

func asPersistenceError(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
