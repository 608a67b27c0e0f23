package models

import (
	"time"

	"gorm.io/datatypes"
)

// LibraryFile represents one document in the shared file library.
// Tags are stored as a JSON string array.
type LibraryFile struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"size:512"`
	Category    string `gorm:"size:32;not null;index"`
	FileMeta

	Version        string `gorm:"size:32"`
	IssueDate      *datatypes.Date
	RelatedProcess string `gorm:"size:128"`
	SupplierName   string `gorm:"size:255"`
	PartCategory   string `gorm:"size:128"`
	Tags           JSON   `gorm:"type:json"`

	ViewCount     int `gorm:"not null;default:0"`
	DownloadCount int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for LibraryFile
func (LibraryFile) TableName() string {
	return "library_files"
}
