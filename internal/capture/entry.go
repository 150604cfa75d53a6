package capture

import (
	"context"
	"fmt"
	"strings"

	"capture-backend/internal/audit"
	"capture-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntryEdit struct {
	Value         string
	SymbologyCode int
	Quantity      int
}

type UpdatedFields struct {
	Value         string `json:"value"`
	SymbologyCode int    `json:"symbology"`
	SymbologyName string `json:"symbology_name"`
	Quantity      int    `json:"quantity"`
}

// UpdateEntry overwrites value, symbology and quantity of one entry. The
// symbology name is re-resolved from the catalog.
func (s *Service) UpdateEntry(ctx context.Context, id uint, edit EntryEdit, actor string) (UpdatedFields, error) {
	if strings.TrimSpace(edit.Value) == "" {
		return UpdatedFields{}, fmt.Errorf("value must not be empty: %w", ErrValidation)
	}
	name, ok := s.catalog.Lookup(edit.SymbologyCode)
	if !ok {
		return UpdatedFields{}, fmt.Errorf("symbology %d: %w", edit.SymbologyCode, ErrInvalidSymbology)
	}
	if edit.Quantity < 1 {
		return UpdatedFields{}, fmt.Errorf("quantity %d: %w", edit.Quantity, ErrInvalidQuantity)
	}

	fields := UpdatedFields{
		Value:         edit.Value,
		SymbologyCode: edit.SymbologyCode,
		SymbologyName: name,
		Quantity:      edit.Quantity,
	}

	err := s.inTx(ctx, "update_entry", func(tx *gorm.DB) error {
		var entry models.ScannedEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "entry", id)
		}

		before := UpdatedFields{
			Value:         entry.Value,
			SymbologyCode: entry.SymbologyCode,
			SymbologyName: entry.SymbologyName,
			Quantity:      entry.Quantity,
		}

		res := tx.Model(&entry).Updates(map[string]any{
			"value":          fields.Value,
			"symbology_code": fields.SymbologyCode,
			"symbology_name": fields.SymbologyName,
			"quantity":       fields.Quantity,
		})
		if res.Error != nil {
			return fmt.Errorf("update entry: %w", res.Error)
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityEntry,
			EntityID:    entry.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Entry %d in session %d edited", entry.ID, entry.SessionID),
			Before:      before,
			After:       fields,
		})
	})
	if err != nil {
		return UpdatedFields{}, err
	}
	return fields, nil
}

type EntryStatus struct {
	ID        uint   `json:"id"`
	Processed bool   `json:"processed"`
	Notes     string `json:"notes"`
}

// UpdateStatus sets only the processed flag and notes of one entry.
func (s *Service) UpdateStatus(ctx context.Context, id uint, processed bool, notes string) (EntryStatus, error) {
	err := s.inTx(ctx, "update_status", func(tx *gorm.DB) error {
		res := tx.Model(&models.ScannedEntry{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"processed":  processed,
				"notes":      notes,
				"updated_at": s.now(),
			})
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("entry %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return EntryStatus{}, err
	}
	return EntryStatus{ID: id, Processed: processed, Notes: notes}, nil
}
