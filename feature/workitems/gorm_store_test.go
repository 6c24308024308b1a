package workitems

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"event-reconciler/core/database"
	"event-reconciler/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	store := NewGormStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func item(n int) reconcile.WorkItem {
	return reconcile.WorkItem{
		EventID:       fmt.Sprintf("%d", 100+n),
		EventUniqueID: fmt.Sprintf("Hall|P%d|Swan Lake|2025-12-%02d|19:30:00", n, n+1),
		EventName:     "Swan Lake",
		EventURL:      fmt.Sprintf("https://venue.example/book/P%d", n),
		EventDatetime: time.Date(2025, 12, n+1, 19, 30, 0, 0, time.UTC),
		VenueName:     "Hall",
		VenueID:       "9",
		Status:        reconcile.StatusActive,
	}
}

func TestGormStore_InsertBatchAndDuplicates(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	res, err := store.InsertBatch(ctx, []reconcile.WorkItem{item(1), item(2), item(3)})
	require.NoError(t, err)
	assert.Equal(t, reconcile.InsertResult{Inserted: 3}, res)

	res, err = store.InsertBatch(ctx, []reconcile.WorkItem{item(2), item(3), item(4)})
	require.NoError(t, err)
	assert.Equal(t, reconcile.InsertResult{Inserted: 1, Duplicates: 2}, res)

	var count int64
	require.NoError(t, store.db.Model(&Row{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestGormStore_InsertBatchEmpty(t *testing.T) {
	store := newSQLiteStore(t)
	res, err := store.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res)
}

func TestGormStore_InsertBatchChunked(t *testing.T) {
	store := newSQLiteStore(t)
	store.batchSize = 2

	items := []reconcile.WorkItem{item(1), item(2), item(3), item(4), item(5)}
	res, err := store.InsertBatch(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Inserted)
}

func TestGormStore_ExistingKeys(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	_, err := store.InsertBatch(ctx, []reconcile.WorkItem{item(1), item(2)})
	require.NoError(t, err)

	existing, err := store.ExistingKeys(ctx,
		[]string{item(1).EventUniqueID, item(5).EventUniqueID},
		[]string{"102", "999"})
	require.NoError(t, err)

	assert.Contains(t, existing.UniqueIDs, item(1).EventUniqueID)
	assert.NotContains(t, existing.UniqueIDs, item(5).EventUniqueID)
	assert.Contains(t, existing.EventIDs, "102")
	assert.NotContains(t, existing.EventIDs, "999")
}

func TestGormStore_ListActive(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	_, err := store.InsertBatch(ctx, []reconcile.WorkItem{item(3), item(1), item(2)})
	require.NoError(t, err)
	require.NoError(t, store.db.Model(&Row{}).Where("event_id = ?", "102").Update("is_listed", true).Error)

	items, err := store.ListActive(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "101", items[0].EventID)
	assert.Equal(t, "103", items[1].EventID)

	items, err = store.ListActive(ctx, "Other Venue", 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = store.ListActive(ctx, "Hall", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGormStore_VerifySchema(t *testing.T) {
	store := newSQLiteStore(t)
	assert.NoError(t, store.VerifySchema())

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE events_to_process (id INTEGER PRIMARY KEY, event_unique_id TEXT)").Error)
	err = NewGormStore(db).VerifySchema()
	assert.ErrorContains(t, err, "missing columns")
}

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormStore_InsertBatchRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `events_to_process`")).
		WillReturnError(errors.New("Lock wait timeout exceeded"))
	mock.ExpectRollback()

	res, err := store.InsertBatch(context.Background(), []reconcile.WorkItem{item(1), item(2)})
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrPersistence)
	assert.Zero(t, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_InsertBatchMySQLDuplicatesCounted(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `events_to_process`")).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	res, err := store.InsertBatch(context.Background(), []reconcile.WorkItem{item(1), item(2)})
	require.NoError(t, err)
	assert.Equal(t, reconcile.InsertResult{Inserted: 1, Duplicates: 1}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ExistingKeysError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `event_unique_id` FROM `events_to_process`")).
		WillReturnError(errors.New("connection refused"))

	_, err := store.ExistingKeys(context.Background(), []string{"a"}, nil)
	assert.ErrorContains(t, err, "connection refused")
}

func TestChunk(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunk(keys, 2))
	assert.Equal(t, [][]string{{"a", "b", "c", "d", "e"}}, chunk(keys, 10))
	assert.Nil(t, chunk(nil, 3))
}
