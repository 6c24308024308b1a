// Package workitems persists reconciled work items into the events_to_process table.
//
// Two stores implement reconcile.Store: GormStore for mysql and sqlite, and PgStore
// for postgres through a pgx pool. Both insert with ON CONFLICT DO NOTHING against the
// unique index on event_unique_id, so a concurrent run inserting the same key is
// reported as a duplicate instead of failing the batch.
package workitems
