// Package database handles database connections and schema inspection.
//
// Connect wraps GORM for the mysql and sqlite drivers; sqlite is what the tests and
// single-host deployments use. NewPool opens a pgx pool for deployments that keep the
// work item table in postgres.
//
// GORM connections are opened with TranslateError so a unique-key violation on
// events_to_process comes back as gorm.ErrDuplicatedKey regardless of dialect.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the work item store verify at startup that the
// table it appends to carries every column it writes.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "events_to_process", workitems.Columns)
package database
