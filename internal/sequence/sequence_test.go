package sequence_test

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/database"
	"github.com/sqmworks/supplier-portal/internal/sequence"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// TestAuditNumberSequence tests that audit numbers are gap-free within a year
func TestAuditNumberSequence(t *testing.T) {
	db := setupTestDB(t)

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	first, err := sequence.Next(db, sequence.AuditNumber, now)
	if err != nil {
		t.Fatalf("Failed to reserve first number: %v", err)
	}
	if first != "AUD-2026-001" {
		t.Errorf("Expected AUD-2026-001, got %s", first)
	}

	second, err := sequence.Next(db, sequence.AuditNumber, now)
	if err != nil {
		t.Fatalf("Failed to reserve second number: %v", err)
	}
	if second != "AUD-2026-002" {
		t.Errorf("Expected AUD-2026-002, got %s", second)
	}
}

// TestTaskNumberSequence tests the TASK prefix and width
func TestTaskNumberSequence(t *testing.T) {
	db := setupTestDB(t)

	now := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)

	got, err := sequence.Next(db, sequence.TaskNumber, now)
	if err != nil {
		t.Fatalf("Failed to reserve number: %v", err)
	}
	if got != "TASK-2026-001" {
		t.Errorf("Expected TASK-2026-001, got %s", got)
	}
}

// TestTripNumberSequence tests the daily scope and four-digit suffix
func TestTripNumberSequence(t *testing.T) {
	db := setupTestDB(t)

	day := time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

	got, err := sequence.Next(db, sequence.TripNumber, day)
	if err != nil {
		t.Fatalf("Failed to reserve number: %v", err)
	}
	if got != "TRIP-20260520-0001" {
		t.Errorf("Expected TRIP-20260520-0001, got %s", got)
	}

	got, err = sequence.Next(db, sequence.TripNumber, day)
	if err != nil {
		t.Fatalf("Failed to reserve second number: %v", err)
	}
	if got != "TRIP-20260520-0002" {
		t.Errorf("Expected TRIP-20260520-0002, got %s", got)
	}

	// A new day restarts the counter
	nextDay := day.AddDate(0, 0, 1)
	got, err = sequence.Next(db, sequence.TripNumber, nextDay)
	if err != nil {
		t.Fatalf("Failed to reserve number on next day: %v", err)
	}
	if got != "TRIP-20260521-0001" {
		t.Errorf("Expected TRIP-20260521-0001, got %s", got)
	}
}

// TestScopeIsolation tests that kinds and scopes do not share counters
func TestScopeIsolation(t *testing.T) {
	db := setupTestDB(t)

	y2026 := time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)
	y2027 := time.Date(2027, 1, 1, 1, 0, 0, 0, time.UTC)

	if _, err := sequence.Next(db, sequence.AuditNumber, y2026); err != nil {
		t.Fatalf("Failed to reserve audit number: %v", err)
	}
	if _, err := sequence.Next(db, sequence.TaskNumber, y2026); err != nil {
		t.Fatalf("Failed to reserve task number: %v", err)
	}

	got, err := sequence.Next(db, sequence.AuditNumber, y2027)
	if err != nil {
		t.Fatalf("Failed to reserve audit number in new year: %v", err)
	}
	if got != "AUD-2027-001" {
		t.Errorf("Expected AUD-2027-001, got %s", got)
	}

	got, err = sequence.Next(db, sequence.AuditNumber, y2026)
	if err != nil {
		t.Fatalf("Failed to reserve audit number in old year: %v", err)
	}
	if got != "AUD-2026-002" {
		t.Errorf("Expected AUD-2026-002, got %s", got)
	}
}
