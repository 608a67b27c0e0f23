package models

import (
	"time"

	"gorm.io/datatypes"
)

// Finding severity and status values
const (
	SeverityMajor       = "major"
	SeverityMinor       = "minor"
	SeverityObservation = "observation"

	FindingOpen       = "open"
	FindingInProgress = "in_progress"
	FindingClosed     = "closed"
)

// AuditReport represents one uploaded supplier audit report. The audit number
// is generated (AUD-YYYY-NNN); the uploaded file is kept as the report source.
type AuditReport struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	AuditNo      string         `gorm:"uniqueIndex;size:32;not null"`
	AuditType    string         `gorm:"size:32;not null;default:ANFIA"`
	SupplierName string         `gorm:"size:255;not null"`
	AuditDate    datatypes.Date `gorm:"not null"`
	Auditor      string         `gorm:"size:128;not null"`
	Notes        string         `gorm:"size:512"`
	Status       string         `gorm:"size:32;not null;default:open"`
	FileMeta

	TotalFindings  int `gorm:"not null;default:0"`
	OpenFindings   int `gorm:"not null;default:0"`
	ClosedFindings int `gorm:"not null;default:0"`

	CreatedAt time.Time

	Findings []AuditFinding `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

// AuditFinding represents one nonconformity extracted from or added to a report
type AuditFinding struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	ReportID    uint64 `gorm:"not null;index"`
	ClauseNo    string `gorm:"size:64;not null"`
	ClauseTitle string `gorm:"size:255"`
	Requirement string `gorm:"size:512"`
	Finding     string `gorm:"type:text;not null"`
	Evidence    string `gorm:"type:text"`
	Severity    string `gorm:"size:32;not null;default:minor"`

	RootCause          string `gorm:"type:text"`
	CorrectiveAction   string `gorm:"type:text"`
	PreventiveAction   string `gorm:"type:text"`
	ResponsiblePerson  string `gorm:"size:128"`
	TargetDate         *datatypes.Date
	ActualCompletion   *datatypes.Date
	VerificationDate   *datatypes.Date
	VerificationResult string `gorm:"size:512"`
	Status             string `gorm:"size:32;not null;default:open"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Progress []FindingProgress `gorm:"foreignKey:FindingID;constraint:OnDelete:CASCADE"`
}

// FindingProgress is one history entry recorded when a finding changes
type FindingProgress struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	FindingID  uint64 `gorm:"not null;index"`
	UpdateType string `gorm:"size:32;not null"`
	OldStatus  string `gorm:"size:32"`
	NewStatus  string `gorm:"size:32"`
	Comment    string `gorm:"type:text"`
	UpdatedBy  string `gorm:"size:128"`
	CreatedAt  time.Time
}

// TableName overrides the table name for AuditReport
func (AuditReport) TableName() string {
	return "audit_reports"
}

// TableName overrides the table name for AuditFinding
func (AuditFinding) TableName() string {
	return "audit_findings"
}

// TableName overrides the table name for FindingProgress
func (FindingProgress) TableName() string {
	return "finding_progress"
}
