package capture

import (
	"context"
	"fmt"
	"time"

	"capture-backend/internal/audit"
	"capture-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MergeRequest struct {
	SessionIDs []uint
	// Now stamps the merged session and every merged entry.
	Now   time.Time
	Label string
	// Address is recorded as the merged session's device address.
	Address string
	Actor   string
}

type MergeResult struct {
	NewSessionID        uint `json:"new_session_id"`
	MergedSessions      int  `json:"merged_sessions_count"`
	ConsolidatedEntries int  `json:"consolidated_barcodes"`
	SourceEntries       int  `json:"source_barcodes"`
}

// entryGroup is one (value, symbology) bucket of the merge.
type entryGroup struct {
	Value         string
	SymbologyCode int
	Quantity      int
}

// Merge collapses the given sessions into one new session. Entries are
// grouped by value and symbology with quantities summed. Sources are
// deleted in the same transaction; on any failure nothing changes.
func (s *Service) Merge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	ids := uniqueIDs(req.SessionIDs)
	if len(ids) < 2 {
		return MergeResult{}, ErrInsufficientInput
	}

	now := canonical(req.Now)
	if req.Now.IsZero() {
		now = s.Now()
	}
	label := orDefault(req.Label, MergedDeviceLabel)
	address := orDefault(req.Address, DefaultDeviceAddress)

	var result MergeResult
	err := s.inTx(ctx, "merge", func(tx *gorm.DB) error {
		result = MergeResult{}

		var sources []models.CaptureSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id asc").
			Find(&sources).Error
		if err != nil {
			return fmt.Errorf("lock sessions: %w", err)
		}
		if len(sources) != len(ids) {
			return fmt.Errorf("%d of %d sessions: %w", len(ids)-len(sources), len(ids), ErrNotFound)
		}

		var entryIDs []uint
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Model(&models.ScannedEntry{}).
			Where("session_id IN ?", ids).
			Pluck("id", &entryIDs).Error
		if err != nil {
			return fmt.Errorf("lock entries: %w", err)
		}

		var groups []entryGroup
		err = tx.Model(&models.ScannedEntry{}).
			Select("value, symbology_code, SUM(quantity) AS quantity").
			Where("session_id IN ?", ids).
			Group("value, symbology_code").
			Order("value asc, symbology_code asc").
			Scan(&groups).Error
		if err != nil {
			return fmt.Errorf("group entries: %w", err)
		}
		if len(groups) == 0 {
			return ErrNoData
		}

		merged := models.CaptureSession{
			SessionTimestamp: now,
			DeviceLabel:      label,
			DeviceAddress:    address,
			TotalEntryCount:  len(groups),
		}
		if err := tx.Create(&merged).Error; err != nil {
			return fmt.Errorf("insert merged session: %w", err)
		}

		entries := make([]models.ScannedEntry, len(groups))
		for i, g := range groups {
			entries[i] = models.ScannedEntry{
				SessionID:     merged.ID,
				Value:         g.Value,
				SymbologyCode: g.SymbologyCode,
				SymbologyName: s.catalog.Name(g.SymbologyCode),
				Quantity:      g.Quantity,
				Timestamp:     now,
			}
		}
		if err := tx.CreateInBatches(&entries, 500).Error; err != nil {
			return fmt.Errorf("insert merged entries: %w", err)
		}

		if err := tx.Where("session_id IN ?", ids).Delete(&models.ScannedEntry{}).Error; err != nil {
			return fmt.Errorf("delete source entries: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.CaptureSession{}).Error; err != nil {
			return fmt.Errorf("delete source sessions: %w", err)
		}

		result = MergeResult{
			NewSessionID:        merged.ID,
			MergedSessions:      len(sources),
			ConsolidatedEntries: len(groups),
			SourceEntries:       len(entryIDs),
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       req.Actor,
			EntityType:  audit.EntitySession,
			EntityID:    merged.ID,
			Action:      models.AuditActionMerge,
			Description: fmt.Sprintf("%d sessions merged into session %d", len(sources), merged.ID),
			Before:      map[string]any{"session_ids": ids, "barcodes": len(entryIDs)},
			After:       result,
		})
	})
	if err != nil {
		return MergeResult{}, err
	}

	s.metrics.IncMerges()
	s.metrics.AddDeleted(int64(result.MergedSessions))
	s.log.Info("sessions merged",
		zap.Uints("source_ids", ids),
		zap.Uint("new_session_id", result.NewSessionID),
		zap.Int("consolidated", result.ConsolidatedEntries),
	)
	return result, nil
}
