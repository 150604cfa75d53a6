package models

import "time"

type AuditAction string

const (
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionMerge  AuditAction = "merge"
	AuditActionReset  AuditAction = "reset"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Who asked for it (client address, or the admin token subject)
	Actor string `gorm:"size:100" json:"actor"`

	// "capture_session" or "scanned_entry"
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action AuditAction `gorm:"size:20" json:"action"`

	Description string `gorm:"size:255" json:"description"`

	// JSON snapshots; "null" when there is nothing to record
	BeforeData string `gorm:"type:text" json:"before_data"`
	AfterData  string `gorm:"type:text" json:"after_data"`
}
