package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"capture-backend/internal/catalog"
	"capture-backend/internal/database"
	"capture-backend/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

// tickingClock hands out strictly increasing times so arrival order is
// deterministic.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	clock := &tickingClock{t: testNow}
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: clock.Now,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestService(t *testing.T, cat *catalog.Catalog) (*Service, *gorm.DB) {
	t.Helper()
	if cat == nil {
		cat = catalog.Default()
	}
	db := openTestDB(t)
	svc := NewService(db, cat, zap.NewNop(), Options{
		Now: func() time.Time { return testNow },
	})
	return svc, db
}

func intPtr(v int) *int { return &v }

func entry(value string, code, qty int) EntryInput {
	return EntryInput{Value: value, SymbologyCode: intPtr(code), Quantity: intPtr(qty)}
}

func mustIngest(t *testing.T, svc *Service, entries ...EntryInput) uint {
	t.Helper()
	if entries == nil {
		entries = []EntryInput{}
	}
	res, err := svc.Ingest(context.Background(), IngestInput{
		SessionTimestamp: "2025-03-14T09:00:00Z",
		DeviceLabel:      "TC58",
		DeviceAddress:    "10.0.0.7",
		Entries:          entries,
	})
	require.NoError(t, err)
	return res.SessionID
}

// requireConsistent checks that every session's total matches its live
// entries and that no entry is orphaned.
func requireConsistent(t *testing.T, db *gorm.DB) {
	t.Helper()

	var sessions []models.CaptureSession
	require.NoError(t, db.Find(&sessions).Error)
	for _, s := range sessions {
		var n int64
		require.NoError(t, db.Model(&models.ScannedEntry{}).Where("session_id = ?", s.ID).Count(&n).Error)
		require.EqualValues(t, s.TotalEntryCount, n, "session %d total", s.ID)
	}

	var orphans int64
	require.NoError(t, db.Model(&models.ScannedEntry{}).
		Where("session_id NOT IN (?)", db.Model(&models.CaptureSession{}).Select("id")).
		Count(&orphans).Error)
	require.Zero(t, orphans)
}
