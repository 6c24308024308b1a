package workitems

import (
	"context"
	"fmt"

	"event-reconciler/core/database"
	"event-reconciler/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lookupChunk = 500

// GormStore keeps work items in mysql or sqlite through gorm.
type GormStore struct {
	db        *gorm.DB
	batchSize int
}

// NewGormStore wraps an open connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, batchSize: 200}
}

// AutoMigrate creates the table and its unique index when missing.
func (s *GormStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Row{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", TableName, err)
	}
	return nil
}

// VerifySchema fails when the table lacks a column this store writes.
func (s *GormStore) VerifySchema() error {
	missing, err := database.MissingColumns(s.db, TableName, Columns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %v", TableName, missing)
	}
	return nil
}

// ExistingKeys returns which of the given keys are already stored.
func (s *GormStore) ExistingKeys(ctx context.Context, uniqueIDs, eventIDs []string) (reconcile.Existing, error) {
	existing := reconcile.Existing{
		UniqueIDs: make(map[string]struct{}),
		EventIDs:  make(map[string]struct{}),
	}
	db := s.db.WithContext(ctx)

	for _, part := range chunk(uniqueIDs, lookupChunk) {
		var found []string
		if err := db.Model(&Row{}).Where("event_unique_id IN ?", part).Pluck("event_unique_id", &found).Error; err != nil {
			return existing, fmt.Errorf("failed to query existing unique ids: %w", err)
		}
		for _, id := range found {
			existing.UniqueIDs[id] = struct{}{}
		}
	}
	for _, part := range chunk(eventIDs, lookupChunk) {
		var found []string
		if err := db.Model(&Row{}).Where("event_id IN ?", part).Pluck("event_id", &found).Error; err != nil {
			return existing, fmt.Errorf("failed to query existing event ids: %w", err)
		}
		for _, id := range found {
			existing.EventIDs[id] = struct{}{}
		}
	}
	return existing, nil
}

// InsertBatch appends items in one transaction. Rows hitting the unique key are skipped
// and counted; any other error rolls back every row of the batch.
func (s *GormStore) InsertBatch(ctx context.Context, items []reconcile.WorkItem) (reconcile.InsertResult, error) {
	var res reconcile.InsertResult
	if len(items) == 0 {
		return res, nil
	}

	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, fromItem(it))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted := 0
		for start := 0; start < len(rows); start += s.batchSize {
			end := min(start+s.batchSize, len(rows))
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows[start:end])
			if result.Error != nil {
				return result.Error
			}
			inserted += int(result.RowsAffected)
		}
		res.Inserted = inserted
		return nil
	})
	if err != nil {
		return reconcile.InsertResult{}, &reconcile.PersistenceError{Op: "insert work items", Err: err}
	}
	res.Duplicates = len(items) - res.Inserted
	return res, nil
}

// ListActive returns active rows downstream has not listed yet, oldest showtime first.
// venue filters by venue_name when non-empty.
func (s *GormStore) ListActive(ctx context.Context, venue string, limit int) ([]reconcile.WorkItem, error) {
	q := s.db.WithContext(ctx).Model(&Row{}).
		Where("status = ? AND is_listed = ?", reconcile.StatusActive, false).
		Order("event_datetime ASC").Order("id ASC")
	if venue != "" {
		q = q.Where("venue_name = ?", venue)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []Row
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list active work items: %w", err)
	}
	items := make([]reconcile.WorkItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.Item())
	}
	return items, nil
}
