package reconcile

import (
	"context"
	"time"

	"event-reconciler/core/match"
	"event-reconciler/core/normalize"

	"go.uber.org/zap"
)

// State is a driver stage.
type State string

const (
	StateFetching    State = "FETCHING"
	StateNormalizing State = "NORMALIZING"
	StateFiltering   State = "FILTERING"
	StateMatching    State = "MATCHING"
	StateDeduping    State = "DEDUPING"
	StatePersisting  State = "PERSISTING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Status is the overall outcome of a run.
type Status string

const (
	StatusDone   Status = "DONE"
	StatusFailed Status = "FAILED"
)

// StatusActive is the status of a freshly created work item.
const StatusActive = "active"

// Source lists one feed's events in [from, to]. An empty result is not an error.
type Source interface {
	ListEvents(ctx context.Context, from, to time.Time) (normalize.Result, error)
}

// Sources are the two feeds of one run.
type Sources struct {
	Inventory Source
	Listing   Source
}

// WorkItem is a row of events_to_process. It is created once and never updated here.
type WorkItem struct {
	EventID       string     `json:"event_id"`
	EventUniqueID string     `json:"event_unique_id"`
	EventName     string     `json:"event_name"`
	EventURL      string     `json:"event_url"`
	EventDatetime time.Time  `json:"event_datetime"`
	VenueName     string     `json:"venue_name"`
	VenueID       string     `json:"venue_id"`
	Status        string     `json:"status"`
	LastChecked   *time.Time `json:"last_checked,omitempty"`
	IsListed      bool       `json:"is_listed"`
}

// Existing holds keys already present in the store.
type Existing struct {
	UniqueIDs map[string]struct{}
	EventIDs  map[string]struct{}
}

// Has reports whether item collides with a stored row.
func (e Existing) Has(item WorkItem, byEventID bool) bool {
	if _, ok := e.UniqueIDs[item.EventUniqueID]; ok {
		return true
	}
	if byEventID {
		if _, ok := e.EventIDs[item.EventID]; ok {
			return true
		}
	}
	return false
}

// InsertResult counts rows written and rows skipped on the unique constraint.
type InsertResult struct {
	Inserted   int
	Duplicates int
}

// Store is the append-only work item table.
// InsertBatch is atomic: duplicate-key rows are skipped and counted, any other error
// rolls back the whole batch and is returned.
type Store interface {
	ExistingKeys(ctx context.Context, uniqueIDs, eventIDs []string) (Existing, error)
	InsertBatch(ctx context.Context, items []WorkItem) (InsertResult, error)
}

// Context is everything one run needs. Build one per run; never share it.
type Context struct {
	RunID    string
	Venue    string
	Location *time.Location
	// From and To bound the fetch window.
	From time.Time
	To   time.Time
	// Match holds the fuzzy threshold, time tolerance and exact-time mode.
	Match    match.Options
	SkipDays int
	Keywords []string
	// Now is the run clock; zero means time.Now.
	Now             time.Time
	DryRun          bool
	DedupeByEventID bool
	Logger          *zap.Logger
}

// Counts are the per-run tallies.
type Counts struct {
	FetchedInventory int `json:"fetched_inventory"`
	FetchedListing   int `json:"fetched_listing"`
	ParseFailures    int `json:"parse_failures"`
	DuplicateIDs     int `json:"duplicate_ids"`
	Excluded         int `json:"excluded"`
	SkippedByWindow  int `json:"skipped_by_window"`
	Matched          int `json:"matched"`
	Unmatched        int `json:"unmatched"`
	Ambiguous        int `json:"ambiguous"`
	// Duplicates were filtered before insert, in-run or against the store.
	Duplicates int `json:"duplicates"`
	// InsertConflicts were skipped by the unique constraint during insert.
	InsertConflicts int `json:"insert_conflicts"`
	Persisted       int `json:"persisted"`
}

// Report is the outcome of one run.
type Report struct {
	RunID       string                 `json:"run_id"`
	Venue       string                 `json:"venue"`
	Status      Status                 `json:"status"`
	State       State                  `json:"state"`
	ErrorKind   Kind                   `json:"error_kind,omitempty"`
	Error       string                 `json:"error,omitempty"`
	DryRun      bool                   `json:"dry_run"`
	WindowFrom  time.Time              `json:"window_from"`
	WindowTo    time.Time              `json:"window_to"`
	Counts      Counts                 `json:"counts"`
	Diagnostics []normalize.Diagnostic `json:"diagnostics,omitempty"`
	// Items are the new work items: persisted, or planned on a dry run.
	Items      []WorkItem `json:"items,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	DurationMS int64      `json:"duration_ms"`
}

// Plan is the in-memory result of FETCHING through DEDUPING.
type Plan struct {
	Pairs []match.Pair
	Items []WorkItem
}
