package models

// Symbology: catalog row, seeded once and read at startup
type Symbology struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"size:64;not null"`
}
