package capture

import (
	"context"
	"fmt"

	"capture-backend/internal/audit"
	"capture-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeleteResult struct {
	Sessions int64 `json:"deleted_sessions"`
	Entries  int64 `json:"deleted_barcodes"`
}

// BulkDelete removes the given sessions and their entries. Ids that do not
// exist are ignored; the counts are the rows actually removed.
func (s *Service) BulkDelete(ctx context.Context, ids []uint, actor string) (DeleteResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return DeleteResult{}, fmt.Errorf("no session ids given: %w", ErrValidation)
	}

	var result DeleteResult
	err := s.inTx(ctx, "bulk_delete", func(tx *gorm.DB) error {
		result = DeleteResult{}

		var sessions []models.CaptureSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id asc").
			Find(&sessions).Error
		if err != nil {
			return fmt.Errorf("lock sessions: %w", err)
		}
		if len(sessions) == 0 {
			return nil
		}

		found := make([]uint, len(sessions))
		for i, sess := range sessions {
			found[i] = sess.ID
		}

		res := tx.Where("session_id IN ?", found).Delete(&models.ScannedEntry{})
		if res.Error != nil {
			return fmt.Errorf("delete entries: %w", res.Error)
		}
		result.Entries = res.RowsAffected

		res = tx.Where("id IN ?", found).Delete(&models.CaptureSession{})
		if res.Error != nil {
			return fmt.Errorf("delete sessions: %w", res.Error)
		}
		result.Sessions = res.RowsAffected

		for _, sess := range sessions {
			err := audit.WriteLog(tx, audit.LogOptions{
				Actor:       actor,
				EntityType:  audit.EntitySession,
				EntityID:    sess.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Session %d from %s deleted", sess.ID, sess.DeviceLabel),
				Before:      sess,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.metrics.AddDeleted(result.Sessions)
	s.log.Info("sessions deleted",
		zap.Int64("sessions", result.Sessions),
		zap.Int64("entries", result.Entries),
	)
	return result, nil
}

// ResetAll deletes every entry and session and restarts both id sequences
// at 1.
func (s *Service) ResetAll(ctx context.Context, actor string) (DeleteResult, error) {
	var result DeleteResult
	err := s.inTx(ctx, "reset", func(tx *gorm.DB) error {
		result = DeleteResult{}

		res := tx.Exec("DELETE FROM scanned_entries")
		if res.Error != nil {
			return fmt.Errorf("delete entries: %w", res.Error)
		}
		result.Entries = res.RowsAffected

		res = tx.Exec("DELETE FROM capture_sessions")
		if res.Error != nil {
			return fmt.Errorf("delete sessions: %w", res.Error)
		}
		result.Sessions = res.RowsAffected

		if err := resetSequences(tx, "scanned_entries", "capture_sessions"); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntitySession,
			Action:      models.AuditActionReset,
			Description: fmt.Sprintf("All data reset: %d sessions, %d barcodes", result.Sessions, result.Entries),
			Before:      result,
		})
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.metrics.IncResets()
	s.metrics.AddDeleted(result.Sessions)
	s.log.Warn("all capture data reset",
		zap.String("actor", actor),
		zap.Int64("sessions", result.Sessions),
		zap.Int64("entries", result.Entries),
	)
	return result, nil
}

func resetSequences(tx *gorm.DB, tables ...string) error {
	switch tx.Dialector.Name() {
	case "postgres":
		for _, table := range tables {
			err := tx.Exec("SELECT setval(pg_get_serial_sequence(?, 'id'), 1, false)", table).Error
			if err != nil {
				return fmt.Errorf("reset sequence of %s: %w", table, err)
			}
		}
	case "sqlite":
		// Only tables declared AUTOINCREMENT keep a counter here; plain
		// rowid tables restart at 1 once empty.
		var n int64
		err := tx.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").Scan(&n).Error
		if err != nil {
			return fmt.Errorf("inspect sqlite_sequence: %w", err)
		}
		if n > 0 {
			if err := tx.Exec("DELETE FROM sqlite_sequence WHERE name IN ?", tables).Error; err != nil {
				return fmt.Errorf("reset sqlite_sequence: %w", err)
			}
		}
	}
	return nil
}
