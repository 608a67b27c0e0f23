package models

import (
	"time"

	"gorm.io/datatypes"
)

// Task status values
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskOnHold     = "on_hold"
	TaskCompleted  = "completed"
)

// Task represents one ad-hoc work item (TASK-YYYY-NNN)
type Task struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	TaskNo          string `gorm:"uniqueIndex;size:32;not null"`
	Title           string `gorm:"size:255;not null"`
	Description     string `gorm:"type:text"`
	Source          string `gorm:"size:64;not null"`
	SourceReference string `gorm:"size:255"`
	Requester       string `gorm:"size:128"`
	Category        string `gorm:"size:64"`
	Priority        string `gorm:"size:16;not null;default:medium"`
	Status          string `gorm:"size:32;not null;default:pending"`
	Progress        int    `gorm:"not null;default:0"`

	StartDate     *datatypes.Date
	DueDate       datatypes.Date `gorm:"not null"`
	CompletedDate *datatypes.Date

	RelatedSupplier string `gorm:"size:255"`
	RelatedTRNo     string `gorm:"column:related_tr_no;size:64"`
	RelatedAuditNo  string `gorm:"size:32"`
	RelatedTripNo   string `gorm:"size:32"`

	Notes     string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Updates     []TaskUpdate     `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Attachments []TaskAttachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TaskUpdate is one history entry recorded when a task changes
type TaskUpdate struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	TaskID      uint64 `gorm:"not null;index"`
	UpdateType  string `gorm:"size:32;not null"`
	OldStatus   string `gorm:"size:32"`
	NewStatus   string `gorm:"size:32"`
	OldProgress int    `gorm:"not null;default:0"`
	NewProgress int    `gorm:"not null;default:0"`
	Content     string `gorm:"type:text"`
	UpdatedBy   string `gorm:"size:128"`
	CreatedAt   time.Time
}

// TaskAttachment represents one file attached to a task
type TaskAttachment struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	TaskID  uint64 `gorm:"not null;index"`
	DocType string `gorm:"size:32;not null;default:other"`
	Title   string `gorm:"size:255"`
	Remark  string `gorm:"size:512"`
	FileMeta
	CreatedAt time.Time
}

// TableName overrides the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TableName overrides the table name for TaskUpdate
func (TaskUpdate) TableName() string {
	return "task_updates"
}

// TableName overrides the table name for TaskAttachment
func (TaskAttachment) TableName() string {
	return "task_attachments"
}
