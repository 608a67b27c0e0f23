package models

import (
	"time"

	"gorm.io/datatypes"
)

// Trip status values
const (
	TripPlanning  = "planning"
	TripOngoing   = "ongoing"
	TripCompleted = "completed"
)

// BusinessTrip represents one supplier visit (TRIP-YYYYMMDD-NNNN)
type BusinessTrip struct {
	ID               uint64         `gorm:"primaryKey;autoIncrement"`
	TripNo           string         `gorm:"uniqueIndex;size:32;not null"`
	Engineer         string         `gorm:"size:128;not null"`
	SupplierCode     string         `gorm:"size:32"`
	SupplierName     string         `gorm:"size:255;not null"`
	SupplierLocation string         `gorm:"size:255"`
	Purpose          string         `gorm:"size:512;not null"`
	AuditType        string         `gorm:"size:32"`
	StartDate        datatypes.Date `gorm:"not null"`
	EndDate          datatypes.Date `gorm:"not null"`
	Days             int            `gorm:"not null;default:1"`
	Status           string         `gorm:"size:32;not null;default:planning"`
	Notes            string         `gorm:"size:512"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Documents []TripDocument `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
}

// TripDocument represents one file attached to a business trip
type TripDocument struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	TripID  uint64 `gorm:"not null;index"`
	DocType string `gorm:"size:32;not null;default:other"`
	Title   string `gorm:"size:255"`
	Remark  string `gorm:"size:512"`
	FileMeta
	CreatedAt time.Time
}

// TableName overrides the table name for BusinessTrip
func (BusinessTrip) TableName() string {
	return "business_trips"
}

// TableName overrides the table name for TripDocument
func (TripDocument) TableName() string {
	return "trip_documents"
}
