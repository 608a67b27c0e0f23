package models

import (
	"time"

	"gorm.io/datatypes"
)

// Part represents a purchased part belonging to one supplier.
// The part number is unique per supplier, not globally.
type Part struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	SupplierID  uint64 `gorm:"not null;index;uniqueIndex:idx_parts_supplier_pn"`
	PN          string `gorm:"column:pn;size:128;not null;uniqueIndex:idx_parts_supplier_pn"`
	Description string `gorm:"size:512"`
	Project     string `gorm:"size:128"`
	Remark      string `gorm:"size:512"`
	CreatedAt   time.Time

	Drawings []Drawing `gorm:"constraint:OnDelete:CASCADE"`
}

// Drawing represents one uploaded drawing revision of a part
type Drawing struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	SupplierID    uint64 `gorm:"not null;index"`
	PartID        uint64 `gorm:"not null;index"`
	Revision      string `gorm:"size:32;not null"`
	Title         string `gorm:"size:255"`
	Remark        string `gorm:"size:512"`
	EffectiveDate *datatypes.Date
	FileMeta
	CreatedAt time.Time
}

// TableName overrides the table name for Part
func (Part) TableName() string {
	return "parts"
}

// TableName overrides the table name for Drawing
func (Drawing) TableName() string {
	return "drawings"
}
