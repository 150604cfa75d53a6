package capture

import (
	"context"
	"testing"
	"time"

	"capture-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSessions_NewestFirstWithStats(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	older := mustIngest(t, svc,
		EntryInput{Value: "a", SymbologyCode: intPtr(1), Timestamp: "2025-03-14T09:00:00Z"},
		EntryInput{Value: "b", SymbologyCode: intPtr(15), Timestamp: "2025-03-14T09:02:20Z"},
		EntryInput{Value: "c", SymbologyCode: intPtr(15), Timestamp: "2025-03-14T09:01:00Z"},
	)
	newer := mustIngest(t, svc)

	require.NoError(t, db.Model(&models.ScannedEntry{}).Where("value = ?", "c").Update("processed", true).Error)

	sessions, err := svc.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer, sessions[0].ID)
	assert.Equal(t, older, sessions[1].ID)

	s := sessions[1]
	assert.Equal(t, 3, s.TotalEntryCount)
	assert.Equal(t, 2, s.UniqueSymbologyCount)
	assert.Equal(t, 1, s.ProcessedCount)
	assert.Equal(t, 2, s.PendingCount)
	require.NotNil(t, s.FirstScanAt)
	require.NotNil(t, s.LastScanAt)
	assert.True(t, s.FirstScanAt.Equal(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)))
	assert.True(t, s.LastScanAt.Equal(time.Date(2025, 3, 14, 9, 2, 20, 0, time.UTC)))
	assert.Equal(t, "2m", s.Duration)

	assert.Nil(t, sessions[0].FirstScanAt)
	assert.Equal(t, "N/A", sessions[0].Duration)

	limited, err := svc.ListSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newer, limited[0].ID)
}

func TestListSessions_CapsLimit(t *testing.T) {
	svc, _ := newTestService(t, nil)
	svc.listLimit = 2
	for i := 0; i < 3; i++ {
		mustIngest(t, svc)
	}

	sessions, err := svc.ListSessions(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestGetSession_EntriesInScanOrder(t *testing.T) {
	svc, _ := newTestService(t, nil)

	id := mustIngest(t, svc,
		EntryInput{Value: "late", Timestamp: "2025-03-14T09:05:00Z"},
		EntryInput{Value: "early", Timestamp: "2025-03-14T09:00:00Z"},
		EntryInput{Value: "tie", Timestamp: "2025-03-14T09:05:00Z"},
	)

	detail, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Entries, 3)
	assert.Equal(t, "early", detail.Entries[0].Value)
	assert.Equal(t, "late", detail.Entries[1].Value)
	assert.Equal(t, "tie", detail.Entries[2].Value)
	assert.Equal(t, "5m", detail.Session.Duration)

	_, err = svc.GetSession(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportRows(t *testing.T) {
	svc, _ := newTestService(t, nil)

	first := mustIngest(t, svc, EntryInput{Value: "a", SymbologyCode: intPtr(1), Quantity: intPtr(2)})
	second, err := svc.Ingest(context.Background(), IngestInput{
		SessionTimestamp: "2025-03-14T09:30:00Z",
		DeviceLabel:      "TC52",
		Entries:          []EntryInput{{Value: "b", SymbologyCode: intPtr(15)}},
	})
	require.NoError(t, err)

	rows, err := svc.ExportRows(context.Background(), []uint{first, second.SessionID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].Value, "newest session first")
	assert.Equal(t, "TC52", rows[0].DeviceLabel)
	assert.Equal(t, "a", rows[1].Value)
	assert.Equal(t, "EAN 13", rows[1].SymbologyName)
	assert.Equal(t, 2, rows[1].Quantity)

	_, err = svc.ExportRows(context.Background(), []uint{4242})
	assert.ErrorIs(t, err, ErrNotFound)
}
