package models

import "time"

// Supplier represents one direct supplier
type Supplier struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Code      string `gorm:"uniqueIndex;size:32;not null"`
	Name      string `gorm:"size:255;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time

	Parts []Part `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Supplier
func (Supplier) TableName() string {
	return "suppliers"
}
