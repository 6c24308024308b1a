package reconcile

import (
	"strings"
	"time"

	"event-reconciler/core/match"
	"event-reconciler/core/normalize"
)

// SkipCutoff is the earliest start a work item may have. With skipDays > 0 it is midnight
// after the last skipped calendar day, so the whole day now+skipDays is skipped.
func SkipCutoff(now time.Time, skipDays int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	if skipDays <= 0 {
		return now
	}
	y, m, d := now.Date()
	return time.Date(y, m, d+skipDays+1, 0, 0, 0, 0, loc)
}

// InWindow reports whether ev may become a work item: strictly after now and not before the cutoff.
func InWindow(ev normalize.Event, now, cutoff time.Time) bool {
	return ev.StartAt.After(now) && !ev.StartAt.Before(cutoff)
}

// UniqueID is the natural key of a work item: venue, listing instance, title, date and time.
func UniqueID(venue, instanceID, title string, start time.Time) string {
	return strings.Join([]string{venue, instanceID, title, start.Format("2006-01-02"), start.Format("15:04:05")}, "|")
}

// NewWorkItem builds the work item for a matched pair. Identity and name come from the
// inventory event; the booking link and showtime from the listing.
func NewWorkItem(venue string, p match.Pair, loc *time.Location) WorkItem {
	if loc == nil {
		loc = time.UTC
	}
	start := p.Listing.StartAt.In(loc)
	instance := p.Listing.InstanceID
	if instance == "" {
		instance = p.Listing.ExternalID
	}
	return WorkItem{
		EventID:       p.Inventory.ExternalID,
		EventUniqueID: UniqueID(venue, instance, p.Inventory.DisplayTitle, start),
		EventName:     p.Inventory.DisplayTitle,
		EventURL:      p.Listing.BookingURL,
		EventDatetime: start,
		VenueName:     venue,
		VenueID:       p.Inventory.VenueID,
		Status:        StatusActive,
	}
}
