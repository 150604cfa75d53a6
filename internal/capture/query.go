package capture

import (
	"context"
	"fmt"
	"time"

	"capture-backend/internal/models"
)

// SessionSummary is a session with statistics derived from its live entries.
type SessionSummary struct {
	ID                   uint       `json:"id"`
	SessionTimestamp     time.Time  `json:"session_timestamp"`
	DeviceLabel          string     `json:"device_info"`
	DeviceAddress        string     `json:"device_ip"`
	TotalEntryCount      int        `json:"total_barcodes"`
	CreatedAt            time.Time  `json:"created_at"`
	UniqueSymbologyCount int        `json:"unique_symbologies"`
	ProcessedCount       int        `json:"processed_count"`
	PendingCount         int        `json:"pending_count"`
	FirstScanAt          *time.Time `json:"first_scan"`
	LastScanAt           *time.Time `json:"last_scan"`
	Duration             string     `json:"duration"`
}

type EntryView struct {
	ID            uint      `json:"id"`
	SessionID     uint      `json:"session_id"`
	Value         string    `json:"value"`
	SymbologyCode int       `json:"symbology"`
	SymbologyName string    `json:"symbology_name"`
	Quantity      int       `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
	Processed     bool      `json:"processed"`
	Notes         string    `json:"notes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SessionDetail struct {
	Session SessionSummary `json:"session"`
	Entries []EntryView    `json:"barcodes"`
}

// entryStat is the projection the summary statistics are computed from.
type entryStat struct {
	SessionID     uint
	SymbologyCode int
	Processed     bool
	Timestamp     time.Time
}

// ListSessions returns the newest sessions by arrival time. limit <= 0 or
// above the configured cap uses the cap.
func (s *Service) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}

	var sessions []models.CaptureSession
	err := s.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return []SessionSummary{}, nil
	}

	ids := make([]uint, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}

	var stats []entryStat
	err = s.db.WithContext(ctx).
		Model(&models.ScannedEntry{}).
		Select("session_id, symbology_code, processed, timestamp").
		Where("session_id IN ?", ids).
		Find(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("load entry statistics: %w", err)
	}

	bySession := make(map[uint][]entryStat, len(sessions))
	for _, st := range stats {
		bySession[st.SessionID] = append(bySession[st.SessionID], st)
	}

	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, summarize(sess, bySession[sess.ID]))
	}
	return out, nil
}

// GetSession returns one session with its entries ordered by scan time.
func (s *Service) GetSession(ctx context.Context, id uint) (SessionDetail, error) {
	var sess models.CaptureSession
	if err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		return SessionDetail{}, notFoundOr(err, "session", id)
	}

	var entries []models.ScannedEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("timestamp asc, id asc").
		Find(&entries).Error
	if err != nil {
		return SessionDetail{}, fmt.Errorf("load entries: %w", err)
	}

	stats := make([]entryStat, len(entries))
	views := make([]EntryView, len(entries))
	for i, e := range entries {
		stats[i] = entryStat{SessionID: e.SessionID, SymbologyCode: e.SymbologyCode, Processed: e.Processed, Timestamp: e.Timestamp}
		views[i] = EntryView{
			ID:            e.ID,
			SessionID:     e.SessionID,
			Value:         e.Value,
			SymbologyCode: e.SymbologyCode,
			SymbologyName: e.SymbologyName,
			Quantity:      e.Quantity,
			Timestamp:     e.Timestamp.UTC(),
			Processed:     e.Processed,
			Notes:         e.Notes,
			UpdatedAt:     e.UpdatedAt.UTC(),
		}
	}

	return SessionDetail{Session: summarize(sess, stats), Entries: views}, nil
}

func summarize(sess models.CaptureSession, stats []entryStat) SessionSummary {
	sum := SessionSummary{
		ID:               sess.ID,
		SessionTimestamp: sess.SessionTimestamp.UTC(),
		DeviceLabel:      sess.DeviceLabel,
		DeviceAddress:    sess.DeviceAddress,
		TotalEntryCount:  sess.TotalEntryCount,
		CreatedAt:        sess.CreatedAt.UTC(),
	}

	symbologies := make(map[int]struct{})
	for _, st := range stats {
		symbologies[st.SymbologyCode] = struct{}{}
		if st.Processed {
			sum.ProcessedCount++
		}
		ts := st.Timestamp.UTC()
		if sum.FirstScanAt == nil || ts.Before(*sum.FirstScanAt) {
			first := ts
			sum.FirstScanAt = &first
		}
		if sum.LastScanAt == nil || ts.After(*sum.LastScanAt) {
			last := ts
			sum.LastScanAt = &last
		}
	}
	sum.UniqueSymbologyCount = len(symbologies)
	sum.PendingCount = len(stats) - sum.ProcessedCount
	sum.Duration = FormatDuration(sum.FirstScanAt, sum.LastScanAt)
	return sum
}
