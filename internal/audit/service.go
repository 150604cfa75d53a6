package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"capture-backend/internal/models"

	"gorm.io/gorm"
)

const (
	EntitySession = "capture_session"
	EntityEntry   = "scanned_entry"
)

type LogOptions struct {
	Actor       string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog stores one audit row using tx, so the row commits or rolls back
// together with the mutation it describes.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	row := models.AuditLog{
		Actor:       opts.Actor,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

type ListFilter struct {
	EntityType string
	EntityID   uint
	Action     models.AuditAction
	Limit      int
}

// List returns the newest audit rows first.
func List(ctx context.Context, db *gorm.DB, f ListFilter) ([]models.AuditLog, error) {
	q := db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID > 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []models.AuditLog
	if err := q.Order("created_at desc, id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
