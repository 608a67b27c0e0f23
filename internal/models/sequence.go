package models

import "time"

// SequenceCounter is the reservation ledger for generated business
// identifiers. One row per (name, scope) pair; Value holds the last issued
// suffix. Reserving the next value updates the row inside a transaction, so
// two concurrent creators can never compute the same identifier.
type SequenceCounter struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:32;not null;uniqueIndex:idx_sequence_name_scope"`
	Scope     string `gorm:"size:16;not null;uniqueIndex:idx_sequence_name_scope"`
	Value     uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName overrides the table name for SequenceCounter
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
