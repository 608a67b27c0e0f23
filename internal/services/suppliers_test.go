package services_test

import (
	"errors"
	"testing"

	"github.com/sqmworks/supplier-portal/data"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// TestSeedSuppliersIdempotent tests that seeding twice inserts once
func TestSeedSuppliersIdempotent(t *testing.T) {
	db := setupTestDB(t)

	seeded, err := services.SeedSuppliers(db, data.SeedSuppliersCSV)
	if err != nil {
		t.Fatalf("Failed to seed suppliers: %v", err)
	}
	if seeded != 3 {
		t.Errorf("Expected 3 seeded suppliers, got %d", seeded)
	}

	seeded, err = services.SeedSuppliers(db, data.SeedSuppliersCSV)
	if err != nil {
		t.Fatalf("Failed to reseed suppliers: %v", err)
	}
	if seeded != 0 {
		t.Errorf("Expected 0 suppliers on reseed, got %d", seeded)
	}

	supplier, err := services.GetSupplierByCode(db, "ZSU0026419")
	if err != nil {
		t.Fatalf("Failed to look up seeded supplier: %v", err)
	}
	if supplier.Name != "NOCO" {
		t.Errorf("Expected NOCO, got %s", supplier.Name)
	}
}

// TestCreateSupplierDuplicateCode tests code uniqueness
func TestCreateSupplierDuplicateCode(t *testing.T) {
	db := setupTestDB(t)

	if _, err := services.CreateSupplier(db, services.SupplierInput{
		Code: "ZSU0026419", Name: "NOCO",
	}); err != nil {
		t.Fatalf("Failed to create supplier: %v", err)
	}

	_, err := services.CreateSupplier(db, services.SupplierInput{
		Code: "ZSU0026419", Name: "Other",
	})
	if err == nil {
		t.Fatal("Expected a conflict error")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeConflict {
		t.Errorf("Expected a conflict error, got %v", err)
	}
}

// TestPartScopedOperations tests per-supplier part uniqueness and scoping
func TestPartScopedOperations(t *testing.T) {
	db := setupTestDB(t)

	s1, err := services.CreateSupplier(db, services.SupplierInput{Code: "S1", Name: "One"})
	if err != nil {
		t.Fatalf("Failed to create supplier: %v", err)
	}
	s2, err := services.CreateSupplier(db, services.SupplierInput{Code: "S2", Name: "Two"})
	if err != nil {
		t.Fatalf("Failed to create supplier: %v", err)
	}

	part, err := services.CreatePart(db, s1.ID, services.PartInput{PN: "PN-1"})
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}

	// Same PN for another supplier is fine
	if _, err := services.CreatePart(db, s2.ID, services.PartInput{PN: "PN-1"}); err != nil {
		t.Fatalf("Failed to create part under second supplier: %v", err)
	}

	// Same PN for the same supplier conflicts
	_, err = services.CreatePart(db, s1.ID, services.PartInput{PN: "PN-1"})
	if err == nil {
		t.Fatal("Expected a conflict error")
	}

	// Lookups are scoped by supplier
	if _, err := services.GetPart(db, s2.ID, part.ID); err == nil {
		t.Error("Expected an error fetching a part through the wrong supplier")
	}
}

// TestUploadDrawing tests the drawing upload path layout
func TestUploadDrawing(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	supplier, err := services.CreateSupplier(db, services.SupplierInput{
		Code: "ZSU0026419", Name: "NOCO",
	})
	if err != nil {
		t.Fatalf("Failed to create supplier: %v", err)
	}
	part, err := services.CreatePart(db, supplier.ID, services.PartInput{PN: "PN-7"})
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}

	drawing, err := services.UploadDrawing(db, store, supplier.ID, part.ID,
		services.DrawingInput{Revision: "A"}, "bracket.dwg", "", []byte("cad data"))
	if err != nil {
		t.Fatalf("Failed to upload drawing: %v", err)
	}

	if drawing.Revision != "A" {
		t.Errorf("Expected revision A, got %s", drawing.Revision)
	}
	if drawing.Title != "bracket.dwg" {
		t.Errorf("Expected title to default to the original name, got %s", drawing.Title)
	}

	content, err := store.Read(drawing.RelPath)
	if err != nil {
		t.Fatalf("Failed to read drawing back: %v", err)
	}
	if string(content) != "cad data" {
		t.Error("Drawing content differs from the uploaded payload")
	}
}
