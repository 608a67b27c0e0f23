package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// TestCreateKnowledgeItemRejectsUnknownProcess tests the process vocabulary
func TestCreateKnowledgeItemRejectsUnknownProcess(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.CreateKnowledgeItem(db, services.KnowledgeInput{
		Title:   "Porosity in aluminum welds",
		Content: "Increase shielding gas flow",
		Process: "alchemy",
	})
	if err == nil {
		t.Fatal("Expected an error for an unknown process")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeValidation {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

// TestCreateKnowledgeItemDefaults tests the default priority
func TestCreateKnowledgeItemDefaults(t *testing.T) {
	db := setupTestDB(t)

	item, err := services.CreateKnowledgeItem(db, services.KnowledgeInput{
		Title:   "Porosity in aluminum welds",
		Content: "Increase shielding gas flow",
		Process: "welding",
	})
	if err != nil {
		t.Fatalf("Failed to create knowledge item: %v", err)
	}
	if item.Priority != "normal" {
		t.Errorf("Expected priority normal, got %s", item.Priority)
	}
}

// TestGetKnowledgeItemRelatedLimit tests the related entries cap
func TestGetKnowledgeItemRelatedLimit(t *testing.T) {
	db := setupTestDB(t)

	var firstID uint64
	for i := 0; i < 8; i++ {
		item, err := services.CreateKnowledgeItem(db, services.KnowledgeInput{
			Title:   fmt.Sprintf("Welding case %d", i),
			Content: "details",
			Process: "welding",
		})
		if err != nil {
			t.Fatalf("Failed to create knowledge item: %v", err)
		}
		if i == 0 {
			firstID = item.ID
		}
	}
	// One item in another process must not show up as related
	if _, err := services.CreateKnowledgeItem(db, services.KnowledgeInput{
		Title: "SMT tombstoning", Content: "details", Process: "smt",
	}); err != nil {
		t.Fatalf("Failed to create knowledge item: %v", err)
	}

	detail, err := services.GetKnowledgeItem(db, firstID)
	if err != nil {
		t.Fatalf("Failed to get knowledge item: %v", err)
	}
	if len(detail.Related) != 6 {
		t.Errorf("Expected 6 related items, got %d", len(detail.Related))
	}
	for _, rel := range detail.Related {
		if rel.Process != "welding" {
			t.Errorf("Related item from the wrong process: %s", rel.Process)
		}
		if rel.ID == firstID {
			t.Error("The item itself must not appear as related")
		}
	}
}

// TestListKnowledgeItemsProcessCounts tests the sidebar counts and filter
func TestListKnowledgeItemsProcessCounts(t *testing.T) {
	db := setupTestDB(t)

	mk := func(title, process string) {
		if _, err := services.CreateKnowledgeItem(db, services.KnowledgeInput{
			Title: title, Content: "details", Process: process,
		}); err != nil {
			t.Fatalf("Failed to create knowledge item: %v", err)
		}
	}
	mk("a", "welding")
	mk("b", "welding")
	mk("c", "coating")

	list, err := services.ListKnowledgeItems(db, "", "welding")
	if err != nil {
		t.Fatalf("Failed to list knowledge items: %v", err)
	}
	if len(list.Items) != 2 {
		t.Errorf("Expected 2 welding items, got %d", len(list.Items))
	}

	counts := map[string]int64{}
	for _, c := range list.Processes {
		counts[c.Process] = c.Count
	}
	if counts["welding"] != 2 || counts["coating"] != 1 {
		t.Errorf("Unexpected process counts: %v", counts)
	}
}

// TestDeleteKnowledgeItem tests deletion and the missing-row error
func TestDeleteKnowledgeItem(t *testing.T) {
	db := setupTestDB(t)

	item, err := services.CreateKnowledgeItem(db, services.KnowledgeInput{
		Title: "Porosity in aluminum welds", Content: "details", Process: "welding",
	})
	if err != nil {
		t.Fatalf("Failed to create knowledge item: %v", err)
	}

	if err := services.DeleteKnowledgeItem(db, item.ID); err != nil {
		t.Fatalf("Failed to delete knowledge item: %v", err)
	}

	err = services.DeleteKnowledgeItem(db, item.ID)
	if err == nil {
		t.Fatal("Expected an error deleting a missing item")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeNotFound {
		t.Errorf("Expected a not_found error, got %v", err)
	}
}
