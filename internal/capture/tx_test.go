package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"capture-backend/internal/catalog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockService(t *testing.T, retries int) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	svc := NewService(db, catalog.Default(), zap.NewNop(), Options{Retries: retries, Now: func() time.Time { return testNow }})
	return svc, mock
}

func TestIngest_EntryInsertFailureRollsBack(t *testing.T) {
	svc, mock := newMockService(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "capture_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "scanned_entries"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.Ingest(context.Background(), IngestInput{Entries: []EntryInput{entry("x", 1, 1)}})
	assert.ErrorIs(t, err, ErrTransactionFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_RetriesSerializationFailure(t *testing.T) {
	svc, mock := newMockService(t, 2)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "capture_sessions"`).
		WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "capture_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	res, err := svc.Ingest(context.Background(), IngestInput{Entries: []EntryInput{}})
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngest_RetriesExhausted(t *testing.T) {
	svc, mock := newMockService(t, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "capture_sessions"`).
		WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	mock.ExpectRollback()

	_, err := svc.Ingest(context.Background(), IngestInput{Entries: []EntryInput{}})
	assert.ErrorIs(t, err, ErrTransactionFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_SessionDeleteFailureRollsBack(t *testing.T) {
	svc, mock := newMockService(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "capture_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_label"}).AddRow(1, "TC58").AddRow(2, "TC58"))
	mock.ExpectQuery(`SELECT "id" FROM "scanned_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))
	mock.ExpectQuery(`SELECT value, symbology_code, SUM\(quantity\) AS quantity FROM "scanned_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"value", "symbology_code", "quantity"}).AddRow("x", 1, 3))
	mock.ExpectQuery(`INSERT INTO "capture_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`INSERT INTO "scanned_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(`DELETE FROM "scanned_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "capture_sessions"`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := svc.Merge(context.Background(), MergeRequest{SessionIDs: []uint{1, 2}})
	assert.ErrorIs(t, err, ErrTransactionFailure)
	assert.ErrorContains(t, err, "delete source sessions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkDelete_SessionDeleteFailureRollsBack(t *testing.T) {
	svc, mock := newMockService(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "capture_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_label"}).AddRow(4, "TC58"))
	mock.ExpectExec(`DELETE FROM "scanned_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM "capture_sessions"`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := svc.BulkDelete(context.Background(), []uint{4}, "admin")
	assert.ErrorIs(t, err, ErrTransactionFailure)
	assert.ErrorContains(t, err, "delete sessions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetAll_SessionDeleteFailureRollsBack(t *testing.T) {
	svc, mock := newMockService(t, 3)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM scanned_entries`).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM capture_sessions`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := svc.ResetAll(context.Background(), "admin")
	assert.ErrorIs(t, err, ErrTransactionFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}
