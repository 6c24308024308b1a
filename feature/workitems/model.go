package workitems

import (
	"time"

	"event-reconciler/core/reconcile"
)

// TableName is the table shared with the downstream scrapers.
const TableName = "events_to_process"

// Columns are the columns this module writes; VerifySchema checks them at startup.
var Columns = []string{
	"event_id", "event_unique_id", "event_name", "event_url", "event_datetime",
	"venue_name", "venue_id", "status", "last_checked", "is_listed",
}

// Row is the gorm model of events_to_process.
type Row struct {
	ID            uint       `gorm:"column:id;primaryKey;autoIncrement"`
	EventID       string     `gorm:"column:event_id;size:50;index"`
	EventUniqueID string     `gorm:"column:event_unique_id;size:512;not null;uniqueIndex:uq_events_to_process_unique_id"`
	EventName     string     `gorm:"column:event_name;size:255"`
	EventURL      string     `gorm:"column:event_url;size:512"`
	EventDatetime time.Time  `gorm:"column:event_datetime"`
	VenueName     string     `gorm:"column:venue_name;size:255;index"`
	VenueID       string     `gorm:"column:venue_id;size:50"`
	Status        string     `gorm:"column:status;size:50;index"`
	LastChecked   *time.Time `gorm:"column:last_checked"`
	IsListed      bool       `gorm:"column:is_listed"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (Row) TableName() string {
	return TableName
}

func fromItem(it reconcile.WorkItem) Row {
	return Row{
		EventID:       it.EventID,
		EventUniqueID: it.EventUniqueID,
		EventName:     it.EventName,
		EventURL:      it.EventURL,
		EventDatetime: it.EventDatetime,
		VenueName:     it.VenueName,
		VenueID:       it.VenueID,
		Status:        it.Status,
		LastChecked:   it.LastChecked,
		IsListed:      it.IsListed,
	}
}

// Item converts a stored row back into a work item.
func (r Row) Item() reconcile.WorkItem {
	return reconcile.WorkItem{
		EventID:       r.EventID,
		EventUniqueID: r.EventUniqueID,
		EventName:     r.EventName,
		EventURL:      r.EventURL,
		EventDatetime: r.EventDatetime,
		VenueName:     r.VenueName,
		VenueID:       r.VenueID,
		Status:        r.Status,
		LastChecked:   r.LastChecked,
		IsListed:      r.IsListed,
	}
}

// chunk splits keys so IN lists stay bounded.
func chunk(keys []string, size int) [][]string {
	var out [][]string
	for size < len(keys) {
		keys, out = keys[size:], append(out, keys[:size:size])
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}
