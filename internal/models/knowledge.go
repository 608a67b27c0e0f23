package models

import "time"

// KnowledgeItem represents one knowledge base entry tied to a manufacturing process
type KnowledgeItem struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Title        string `gorm:"size:255;not null"`
	Content      string `gorm:"type:text;not null"`
	Process      string `gorm:"size:32;not null;index"`
	CaseType     string `gorm:"size:32"`
	Priority     string `gorm:"size:16;not null;default:normal"`
	SupplierName string `gorm:"size:255"`
	PartNumber   string `gorm:"size:128"`
	Tags         JSON   `gorm:"type:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name for KnowledgeItem
func (KnowledgeItem) TableName() string {
	return "knowledge_items"
}
