package models

import "time"

// ScannedEntry: a decoded code, owned by exactly one session
type ScannedEntry struct {
	ID            uint      `gorm:"primaryKey"`
	SessionID     uint      `gorm:"index;not null"`
	Value         string    `gorm:"type:text;not null"`
	SymbologyCode int       `gorm:"index;not null"`
	SymbologyName string    `gorm:"size:64;not null"` // copied from the catalog on every write
	Quantity      int       `gorm:"not null;default:1"`
	Timestamp     time.Time `gorm:"index;not null"`
	Processed     bool      `gorm:"not null;default:false"`
	Notes         string    `gorm:"type:text;not null;default:''"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
