// Package reconcile drives one cross-source reconciliation run for a venue.
//
// A run moves through fixed states:
//
//	FETCHING -> NORMALIZING -> FILTERING -> MATCHING -> DEDUPING -> PERSISTING -> DONE
//
// and ends in FAILED when a feed cannot be fetched or the store fails.
//
// # Stages
//
//  1. FETCHING: the inventory and listing Sources are queried concurrently. Either failure
//     aborts the run before the store is touched. An empty feed is a valid result.
//  2. NORMALIZING: duplicate external ids are dropped (first kept) and excluded events are
//     removed, so the matcher never sees a cancelled or sold out record.
//  3. FILTERING: events inside the skip window (now through the end of day now+SkipDays, in
//     the venue location) are dropped from both feeds.
//  4. MATCHING: see package match.
//  5. DEDUPING: work items are built per pair and checked against the store by
//     event_unique_id and, optionally, event_id.
//  6. PERSISTING: the remaining items are appended in one atomic batch. Rows rejected by the
//     unique constraint count as duplicates, not errors.
//
// BuildPlan and ApplyPlan split the read-only stages from the write, the same way a dry run
// stops after DEDUPING.
//
// # Usage
//
//	report, err := reconcile.Run(ctx, reconcile.Context{
//	    Venue:    "Kennedy Center Opera House",
//	    Location: ny,
//	    Match:    match.Options{Threshold: 70, Tolerance: 12 * time.Hour},
//	    SkipDays: 7,
//	}, reconcile.Sources{Inventory: inv, Listing: lst}, store)
package reconcile
