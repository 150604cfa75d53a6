package models

import "time"

// CaptureSession: one batch of scans uploaded together by a capture device
type CaptureSession struct {
	ID               uint      `gorm:"primaryKey"`
	SessionTimestamp time.Time `gorm:"index;not null"` // client reported time
	DeviceLabel      string    `gorm:"size:255;not null;default:'Unknown Device'"`
	DeviceAddress    string    `gorm:"size:64;not null;default:'0.0.0.0'"`
	TotalEntryCount  int       `gorm:"not null;default:0"` // always equals len(Entries)
	CreatedAt        time.Time `gorm:"index"`               // arrival time
	UpdatedAt        time.Time

	Entries []ScannedEntry `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}
