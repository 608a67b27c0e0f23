package models

import "time"

// 8D status enum values for a trouble report
const (
	EightDNotRequired    = "NOT_REQUIRED"
	EightDNotReceived    = "NOT_RECEIVED"
	EightDReceivedReject = "RECEIVED_REJECT"
	EightDReceivedPass   = "RECEIVED_PASS"
)

// TroubleReport represents a supplier trouble report (TR). The TR number is
// user-supplied and globally unique; there is no generator for it.
type TroubleReport struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	TRNo             string `gorm:"column:tr_no;uniqueIndex;size:64;not null"`
	SupplierCode     string `gorm:"size:32"`
	SupplierName     string `gorm:"size:255;not null"`
	PartNumber       string `gorm:"size:128"`
	PartName         string `gorm:"size:255"`
	IssueDescription string `gorm:"type:text;not null"`
	Severity         string `gorm:"size:32"`
	EightD           string `gorm:"column:eight_d;size:255"`
	EightDStatus     string `gorm:"column:eight_d_status;size:32;not null;default:NOT_REQUIRED"`
	Status           string `gorm:"size:32;not null;default:Open"`
	Remark           string `gorm:"size:512"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Documents []TRDocument `gorm:"foreignKey:TRID;constraint:OnDelete:CASCADE"`
}

// TRDocument represents one file attached to a trouble report
type TRDocument struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	TRID    uint64 `gorm:"column:tr_id;not null;index"`
	DocType string `gorm:"size:32;not null;default:other"`
	Title   string `gorm:"size:255"`
	Remark  string `gorm:"size:512"`
	FileMeta
	CreatedAt time.Time
}

// TableName overrides the table name for TroubleReport
func (TroubleReport) TableName() string {
	return "trouble_reports"
}

// TableName overrides the table name for TRDocument
func (TRDocument) TableName() string {
	return "tr_documents"
}
