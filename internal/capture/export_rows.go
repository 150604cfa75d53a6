package capture

import (
	"context"
	"fmt"

	"capture-backend/internal/export"
)

// ExportRows projects the entries of the given sessions for download,
// newest session first and entries in scan order.
func (s *Service) ExportRows(ctx context.Context, ids []uint) ([]export.Row, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no sessions selected for export: %w", ErrValidation)
	}

	var rows []export.Row
	err := s.db.WithContext(ctx).
		Table("scanned_entries AS e").
		Select(`e.timestamp AS scanned_at,
			e.symbology_name,
			e.value,
			e.quantity,
			e.processed,
			e.notes,
			s.device_label,
			s.device_address,
			s.session_timestamp`).
		Joins("JOIN capture_sessions AS s ON s.id = e.session_id").
		Where("e.session_id IN ?", ids).
		Order("s.session_timestamp desc, e.timestamp asc, e.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load export rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found for selected sessions: %w", ErrNotFound)
	}
	return rows, nil
}
