package capture

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"capture-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkDelete(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	s1 := mustIngest(t, svc, entry("a", 1, 1), entry("b", 1, 1))
	s2 := mustIngest(t, svc, entry("c", 1, 1))
	keep := mustIngest(t, svc, entry("d", 1, 1))

	res, err := svc.BulkDelete(ctx, []uint{s1, s2, 4242}, "ops")
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Sessions)
	assert.EqualValues(t, 3, res.Entries)

	_, err = svc.GetSession(ctx, keep)
	assert.NoError(t, err)

	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionDelete).Count(&logs).Error)
	assert.EqualValues(t, 2, logs)

	requireConsistent(t, db)
}

func TestBulkDelete_EmptyIsValidationError(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.BulkDelete(context.Background(), nil, "ops")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBulkDelete_ConcurrentOverlappingRequests(t *testing.T) {
	svc, db := newTestService(t, nil)

	ids := make([]uint, 6)
	for i := range ids {
		ids[i] = mustIngest(t, svc, entry("a", 1, 1), entry("b", 1, 1))
	}

	batches := [][]uint{
		{ids[0], ids[1], ids[2]},
		{ids[1], ids[2], ids[3]},
		{ids[3], ids[4], ids[5]},
		{ids[0], ids[5]},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sessions int64
		entries  int64
	)
	for _, batch := range batches {
		wg.Add(1)
		go func(batch []uint) {
			defer wg.Done()
			res, err := svc.BulkDelete(context.Background(), batch, "ops")
			assert.NoError(t, err)
			mu.Lock()
			sessions += res.Sessions
			entries += res.Entries
			mu.Unlock()
		}(batch)
	}
	wg.Wait()

	assert.EqualValues(t, 6, sessions)
	assert.EqualValues(t, 12, entries)

	var left int64
	require.NoError(t, db.Model(&models.ScannedEntry{}).Count(&left).Error)
	assert.Zero(t, left)
	requireConsistent(t, db)
}

func TestResetAll_RestartsIdentifiers(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	mustIngest(t, svc, entry("a", 1, 1))
	mustIngest(t, svc, entry("b", 1, 1), entry("c", 1, 2))

	res, err := svc.ResetAll(ctx, "ops")
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Sessions)
	assert.EqualValues(t, 3, res.Entries)

	id := mustIngest(t, svc, entry("d", 1, 1))
	assert.EqualValues(t, 1, id)

	var e models.ScannedEntry
	require.NoError(t, db.First(&e).Error)
	assert.EqualValues(t, 1, e.ID)

	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionReset).Count(&logs).Error)
	assert.EqualValues(t, 1, logs)
}

func TestBulkDelete_LongMultiByteLabel(t *testing.T) {
	svc, db := newTestService(t, nil)

	res, err := svc.Ingest(context.Background(), IngestInput{
		DeviceLabel: strings.Repeat("é", 255),
		Entries:     []EntryInput{entry("a", 1, 1)},
	})
	require.NoError(t, err)

	deleted, err := svc.BulkDelete(context.Background(), []uint{res.SessionID}, "ops")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted.Sessions)

	var log models.AuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionDelete).First(&log).Error)
	assert.True(t, utf8.ValidString(log.Description))
	assert.LessOrEqual(t, len(log.Description), 255)
}
