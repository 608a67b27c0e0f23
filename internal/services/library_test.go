package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// TestUploadLibraryFile tests upload with tags and the category path layout
func TestUploadLibraryFile(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	file, err := services.UploadLibraryFile(db, store, services.LibraryFileInput{
		Category: "standard",
		Tags:     types.FlexStrings{"welding", "fixture"},
	}, "iso-3834.pdf", "application/pdf", []byte("pdf content"))
	if err != nil {
		t.Fatalf("Failed to upload library file: %v", err)
	}

	if file.Title != "iso-3834.pdf" {
		t.Errorf("Expected title to default to the original name, got %s", file.Title)
	}
	if !strings.HasPrefix(file.RelPath, "file_library/standard/") {
		t.Errorf("Unexpected rel path %s", file.RelPath)
	}
	if file.ViewCount != 0 || file.DownloadCount != 0 {
		t.Error("Expected fresh counters")
	}
}

// TestUploadLibraryFileRejectsUnknownCategory tests the category vocabulary
func TestUploadLibraryFileRejectsUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	_, err := services.UploadLibraryFile(db, store, services.LibraryFileInput{
		Category: "misc",
	}, "doc.pdf", "application/pdf", []byte("pdf content"))
	if err == nil {
		t.Fatal("Expected an error for an unknown category")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeValidation {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

// TestLibraryCounters tests the view and download counters
func TestLibraryCounters(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	file, err := services.UploadLibraryFile(db, store, services.LibraryFileInput{
		Category: "template",
	}, "checklist.xlsx", "", []byte("workbook"))
	if err != nil {
		t.Fatalf("Failed to upload library file: %v", err)
	}

	if err := services.TouchLibraryView(db, file.ID); err != nil {
		t.Fatalf("Failed to touch view counter: %v", err)
	}
	if err := services.TouchLibraryView(db, file.ID); err != nil {
		t.Fatalf("Failed to touch view counter: %v", err)
	}
	if err := services.TouchLibraryDownload(db, file.ID); err != nil {
		t.Fatalf("Failed to touch download counter: %v", err)
	}

	reloaded, err := services.GetLibraryFile(db, file.ID)
	if err != nil {
		t.Fatalf("Failed to reload file: %v", err)
	}
	if reloaded.ViewCount != 2 || reloaded.DownloadCount != 1 {
		t.Errorf("Unexpected counters: views=%d downloads=%d",
			reloaded.ViewCount, reloaded.DownloadCount)
	}
}

// TestListLibraryFilesCategoryCounts tests the sidebar counts and filter
func TestListLibraryFilesCategoryCounts(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	mk := func(category, name string) {
		_, err := services.UploadLibraryFile(db, store, services.LibraryFileInput{
			Category: category,
		}, name, "application/pdf", []byte("content"))
		if err != nil {
			t.Fatalf("Failed to upload %s: %v", name, err)
		}
	}
	mk("standard", "a.pdf")
	mk("standard", "b.pdf")
	mk("procedure", "c.pdf")

	list, err := services.ListLibraryFiles(db, "", "standard")
	if err != nil {
		t.Fatalf("Failed to list library files: %v", err)
	}
	if len(list.Items) != 2 {
		t.Errorf("Expected 2 standard files, got %d", len(list.Items))
	}
	if list.Total != 3 {
		t.Errorf("Expected 3 files overall, got %d", list.Total)
	}

	counts := map[string]int64{}
	for _, c := range list.Categories {
		counts[c.Category] = c.Count
	}
	if counts["standard"] != 2 || counts["procedure"] != 1 {
		t.Errorf("Unexpected category counts: %v", counts)
	}
}

// TestDeleteLibraryFileRemovesFile tests that deletion removes the stored file
func TestDeleteLibraryFileRemovesFile(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	file, err := services.UploadLibraryFile(db, store, services.LibraryFileInput{
		Category: "manual",
	}, "manual.pdf", "", []byte("content"))
	if err != nil {
		t.Fatalf("Failed to upload library file: %v", err)
	}

	if err := services.DeleteLibraryFile(db, store, file.ID); err != nil {
		t.Fatalf("Failed to delete library file: %v", err)
	}
	if _, err := services.GetLibraryFile(db, file.ID); err == nil {
		t.Error("Expected the file record to be gone")
	}
	if _, err := store.Read(file.RelPath); err == nil {
		t.Error("Expected the stored file to be gone")
	}
}
