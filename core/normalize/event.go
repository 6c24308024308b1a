package normalize

import (
	"fmt"
	"time"
)

// Source names the feed an event came from.
type Source string

const (
	// Inventory is the authoritative ticketing feed.
	Inventory Source = "INVENTORY"
	// Listing is the venue's public calendar.
	Listing Source = "LISTING"
)

// Event is the canonical shape shared by both feeds past the adapter boundary.
type Event struct {
	Source     Source
	ExternalID string
	// Title is the comparison form; DisplayTitle keeps the original casing.
	Title        string
	DisplayTitle string
	StartAt      time.Time
	BookingURL   string
	// VenueID is only set by the inventory feed.
	VenueID string
	// InstanceID is the listing's performance id.
	InstanceID    string
	Excluded      bool
	ExcludeReason string
}

func (e Event) String() string {
	return fmt.Sprintf("%s:%s %q @ %s", e.Source, e.ExternalID, e.DisplayTitle, e.StartAt.Format(time.RFC3339))
}

// DiagnosticKind classifies a per-record problem that did not fail the run.
type DiagnosticKind string

const (
	ParseFailure DiagnosticKind = "parse_failure"
	DuplicateID  DiagnosticKind = "duplicate_id"
)

// Diagnostic records a dropped record.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Source     Source         `json:"source"`
	ExternalID string         `json:"external_id"`
	Detail     string         `json:"detail"`
}

// Result is what an adapter returns. An empty Events slice is a valid result.
type Result struct {
	Events      []Event
	Diagnostics []Diagnostic
}

// Input is one raw record flattened by an adapter.
type Input struct {
	Source     Source
	ExternalID string
	Title      string
	Start      string
	BookingURL string
	VenueID    string
	InstanceID string
	// Status holds free-text status fields checked against the exclusion keywords.
	Status []string
	// ExcludeReason marks the record excluded by a structural flag (sold_out, access).
	ExcludeReason string
}

// Normalizer turns adapter inputs into events for one venue location.
type Normalizer struct {
	Location   *time.Location
	Classifier *Classifier
}

// Normalize builds an Event. A start time that cannot be parsed is an error wrapping
// ErrUnparsableTime; the record must be dropped, never defaulted.
func (n Normalizer) Normalize(in Input) (Event, error) {
	loc := n.Location
	if loc == nil {
		loc = time.UTC
	}
	start, err := ParseTime(in.Start, loc)
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		Source:       in.Source,
		ExternalID:   in.ExternalID,
		Title:        CleanTitle(in.Title),
		DisplayTitle: DisplayTitle(in.Title),
		StartAt:      start,
		BookingURL:   in.BookingURL,
		VenueID:      in.VenueID,
		InstanceID:   in.InstanceID,
	}

	if in.ExcludeReason != "" {
		ev.Excluded, ev.ExcludeReason = true, in.ExcludeReason
		return ev, nil
	}
	classifier := n.Classifier
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	fields := append([]string{ev.DisplayTitle}, in.Status...)
	ev.Excluded, ev.ExcludeReason = classifier.Classify(fields...)
	return ev, nil
}

// Add normalizes in and appends either the event or a ParseFailure diagnostic.
func (r *Result) Add(n Normalizer, in Input) {
	ev, err := n.Normalize(in)
	if err != nil {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Kind:       ParseFailure,
			Source:     in.Source,
			ExternalID: in.ExternalID,
			Detail:     err.Error(),
		})
		return
	}
	r.Events = append(r.Events, ev)
}
