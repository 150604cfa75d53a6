package capture

import (
	"context"
	"fmt"
	"strings"

	"capture-backend/internal/catalog"
	"capture-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EntryInput is one decoded code as reported by a device. Nil pointers mean
// the field was absent.
type EntryInput struct {
	Value         string
	SymbologyCode *int
	Quantity      *int
	Timestamp     string
}

type IngestInput struct {
	SessionTimestamp string
	DeviceLabel      string
	DeviceAddress    string
	// Entries must be non-nil; an empty list is accepted.
	Entries []EntryInput
}

type IngestResult struct {
	SessionID       uint `json:"session_id"`
	TotalEntryCount int  `json:"total_barcodes"`
	Skipped         int  `json:"skipped"`
}

// Ingest stores a device upload as a new session. Entries with an empty
// value or a quantity below 1 are dropped one by one; timestamps that cannot
// be parsed fall back to the arrival time.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (IngestResult, error) {
	if in.Entries == nil {
		return IngestResult{}, fmt.Errorf("missing barcodes array: %w", ErrValidation)
	}

	arrival := s.Now()
	sessionTS, ok := NormalizeTimestamp(in.SessionTimestamp, arrival)
	if !ok && in.SessionTimestamp != "" {
		s.log.Warn("session timestamp not understood, using arrival time",
			zap.String("raw", in.SessionTimestamp))
	}

	entries := make([]models.ScannedEntry, 0, len(in.Entries))
	skipped := 0
	for _, e := range in.Entries {
		if strings.TrimSpace(e.Value) == "" {
			skipped++
			continue
		}
		quantity := 1
		if e.Quantity != nil {
			quantity = *e.Quantity
		}
		if quantity < 1 {
			skipped++
			continue
		}
		code := catalog.UnknownCode
		if e.SymbologyCode != nil {
			code = *e.SymbologyCode
		}
		ts, _ := NormalizeTimestamp(e.Timestamp, arrival)

		entries = append(entries, models.ScannedEntry{
			Value:         e.Value,
			SymbologyCode: code,
			SymbologyName: s.catalog.Name(code),
			Quantity:      quantity,
			Timestamp:     ts,
		})
	}

	session := models.CaptureSession{
		SessionTimestamp: sessionTS,
		DeviceLabel:      orDefault(in.DeviceLabel, DefaultDeviceLabel),
		DeviceAddress:    orDefault(in.DeviceAddress, DefaultDeviceAddress),
		TotalEntryCount:  len(entries),
	}

	err := s.inTx(ctx, "ingest", func(tx *gorm.DB) error {
		session.ID = 0
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].ID = 0
			entries[i].SessionID = session.ID
		}
		if err := tx.CreateInBatches(&entries, 500).Error; err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return IngestResult{}, err
	}

	s.metrics.AddIngested(len(entries), skipped)
	s.log.Info("capture session received",
		zap.Uint("session_id", session.ID),
		zap.String("device", session.DeviceLabel),
		zap.Int("entries", len(entries)),
		zap.Int("skipped", skipped),
	)

	return IngestResult{
		SessionID:       session.ID,
		TotalEntryCount: len(entries),
		Skipped:         skipped,
	}, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
