package workitems

import (
	"context"
	"fmt"

	"event-reconciler/core/reconcile"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgConn is the subset of *pgxpool.Pool the postgres store uses.
type PgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS events_to_process (
	id              BIGSERIAL PRIMARY KEY,
	event_id        VARCHAR(50),
	event_unique_id VARCHAR(512) NOT NULL,
	event_name      VARCHAR(255),
	event_url       VARCHAR(512),
	event_datetime  TIMESTAMPTZ,
	venue_name      VARCHAR(255),
	venue_id        VARCHAR(50),
	status          VARCHAR(50),
	last_checked    TIMESTAMPTZ,
	is_listed       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT uq_events_to_process_unique_id UNIQUE (event_unique_id)
);
CREATE INDEX IF NOT EXISTS idx_events_to_process_event_id ON events_to_process (event_id);
CREATE INDEX IF NOT EXISTS idx_events_to_process_status ON events_to_process (status, is_listed);`

const pgInsert = `INSERT INTO events_to_process
	(event_id, event_unique_id, event_name, event_url, event_datetime, venue_name, venue_id, status, last_checked, is_listed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (event_unique_id) DO NOTHING`

// PgStore keeps work items in postgres through pgx.
type PgStore struct {
	db PgConn
}

// NewPgStore wraps a pool.
func NewPgStore(db PgConn) *PgStore {
	return &PgStore{db: db}
}

// EnsureSchema creates the table and indexes when missing.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create %s: %w", TableName, err)
	}
	return nil
}

// ExistingKeys returns which of the given keys are already stored.
func (s *PgStore) ExistingKeys(ctx context.Context, uniqueIDs, eventIDs []string) (reconcile.Existing, error) {
	existing := reconcile.Existing{}
	var err error
	if existing.UniqueIDs, err = s.lookup(ctx, "event_unique_id", uniqueIDs); err != nil {
		return existing, err
	}
	if existing.EventIDs, err = s.lookup(ctx, "event_id", eventIDs); err != nil {
		return existing, err
	}
	return existing, nil
}

func (s *PgStore) lookup(ctx context.Context, column string, keys []string) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	if len(keys) == 0 {
		return found, nil
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT DISTINCT %s FROM events_to_process WHERE %s = ANY($1)", column, column), keys)
	if err != nil {
		return nil, fmt.Errorf("query existing %s: %w", column, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan existing %s: %w", column, err)
	}
	for _, v := range values {
		found[v] = struct{}{}
	}
	return found, nil
}

// InsertBatch sends every insert in one pgx batch inside a transaction. Rows skipped by
// ON CONFLICT report zero affected rows and are counted as duplicates.
func (s *PgStore) InsertBatch(ctx context.Context, items []reconcile.WorkItem) (reconcile.InsertResult, error) {
	var res reconcile.InsertResult
	if len(items) == 0 {
		return res, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return res, &reconcile.PersistenceError{Op: "begin transaction", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(pgInsert, it.EventID, it.EventUniqueID, it.EventName, it.EventURL, it.EventDatetime,
			it.VenueName, it.VenueID, it.Status, it.LastChecked, it.IsListed)
	}

	br := tx.SendBatch(ctx, batch)
	inserted := 0
	for range items {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return reconcile.InsertResult{}, &reconcile.PersistenceError{Op: "insert work items", Err: err}
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return reconcile.InsertResult{}, &reconcile.PersistenceError{Op: "close batch", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return reconcile.InsertResult{}, &reconcile.PersistenceError{Op: "commit work items", Err: err}
	}

	res.Inserted = inserted
	res.Duplicates = len(items) - inserted
	return res, nil
}

// ListActive returns active rows downstream has not listed yet, oldest showtime first.
func (s *PgStore) ListActive(ctx context.Context, venue string, limit int) ([]reconcile.WorkItem, error) {
	query := `SELECT event_id, event_unique_id, event_name, event_url, event_datetime, venue_name, venue_id, status, last_checked, is_listed
		FROM events_to_process
		WHERE status = $1 AND is_listed = FALSE AND ($2 = '' OR venue_name = $2)
		ORDER BY event_datetime ASC, id ASC`
	args := []any{reconcile.StatusActive, venue}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active work items: %w", err)
	}
	defer rows.Close()

	var items []reconcile.WorkItem
	for rows.Next() {
		var it reconcile.WorkItem
		if err := rows.Scan(&it.EventID, &it.EventUniqueID, &it.EventName, &it.EventURL, &it.EventDatetime,
			&it.VenueName, &it.VenueID, &it.Status, &it.LastChecked, &it.IsListed); err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
