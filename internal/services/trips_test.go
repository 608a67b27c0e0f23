package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// TestCreateTrip tests trip creation with the generated number and day count
func TestCreateTrip(t *testing.T) {
	db := setupTestDB(t)

	trip, err := services.CreateTrip(db, services.TripInput{
		Engineer:     "Li Wei",
		SupplierName: "NOCO",
		Purpose:      "Process audit",
		StartDate:    "2026-05-20",
		EndDate:      "2026-05-22",
	})
	if err != nil {
		t.Fatalf("Failed to create trip: %v", err)
	}

	if !strings.HasPrefix(trip.TripNo, "TRIP-20") {
		t.Errorf("Unexpected trip number %s", trip.TripNo)
	}
	if trip.Days != 3 {
		t.Errorf("Expected 3 days, got %d", trip.Days)
	}
	if trip.Status != models.TripPlanning {
		t.Errorf("Expected status planning, got %s", trip.Status)
	}
}

// TestCreateTripSingleDay tests that a same-day trip counts one day
func TestCreateTripSingleDay(t *testing.T) {
	db := setupTestDB(t)

	trip, err := services.CreateTrip(db, services.TripInput{
		Engineer:     "Li Wei",
		SupplierName: "NOCO",
		Purpose:      "Containment check",
		StartDate:    "2026-05-20",
		EndDate:      "2026-05-20",
	})
	if err != nil {
		t.Fatalf("Failed to create trip: %v", err)
	}
	if trip.Days != 1 {
		t.Errorf("Expected 1 day, got %d", trip.Days)
	}
}

// TestCreateTripRejectsReversedDates tests end before start validation
func TestCreateTripRejectsReversedDates(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.CreateTrip(db, services.TripInput{
		Engineer:     "Li Wei",
		SupplierName: "NOCO",
		Purpose:      "Process audit",
		StartDate:    "2026-05-22",
		EndDate:      "2026-05-20",
	})
	if err == nil {
		t.Fatal("Expected an error for reversed dates")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeValidation {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

// TestCreateTripFromRegisteredSupplier tests supplier lookup by ID
func TestCreateTripFromRegisteredSupplier(t *testing.T) {
	db := setupTestDB(t)

	supplier, err := services.CreateSupplier(db, services.SupplierInput{
		Code: "ZSU0026419",
		Name: "NOCO",
	})
	if err != nil {
		t.Fatalf("Failed to create supplier: %v", err)
	}

	trip, err := services.CreateTrip(db, services.TripInput{
		Engineer:   "Li Wei",
		SupplierID: supplier.ID,
		Purpose:    "Process audit",
		StartDate:  "2026-05-20",
		EndDate:    "2026-05-21",
	})
	if err != nil {
		t.Fatalf("Failed to create trip: %v", err)
	}
	if trip.SupplierCode != "ZSU0026419" || trip.SupplierName != "NOCO" {
		t.Errorf("Expected supplier fields backfilled, got %s/%s", trip.SupplierCode, trip.SupplierName)
	}
}

// TestListTripsStats tests the status statistics
func TestListTripsStats(t *testing.T) {
	db := setupTestDB(t)

	mk := func(status string) {
		_, err := services.CreateTrip(db, services.TripInput{
			Engineer:     "Li Wei",
			SupplierName: "NOCO",
			Purpose:      "Visit",
			StartDate:    "2026-05-20",
			EndDate:      "2026-05-20",
			Status:       status,
		})
		if err != nil {
			t.Fatalf("Failed to create trip: %v", err)
		}
	}
	mk(models.TripPlanning)
	mk(models.TripOngoing)
	mk(models.TripCompleted)
	mk("nonsense") // coerced to planning

	list, err := services.ListTrips(db, "")
	if err != nil {
		t.Fatalf("Failed to list trips: %v", err)
	}
	if list.Stats.Total != 4 || list.Stats.Planning != 2 || list.Stats.Ongoing != 1 || list.Stats.Completed != 1 {
		t.Errorf("Unexpected stats: %+v", list.Stats)
	}
}

// TestUploadTripDocument tests the trip document cycle with ownership scoping
func TestUploadTripDocument(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	trip, err := services.CreateTrip(db, services.TripInput{
		Engineer:     "Li Wei",
		SupplierName: "NOCO",
		Purpose:      "Process audit",
		StartDate:    "2026-05-20",
		EndDate:      "2026-05-21",
	})
	if err != nil {
		t.Fatalf("Failed to create trip: %v", err)
	}

	doc, err := services.UploadTripDocument(db, store, trip.ID,
		"audit_plan", "Plan", "", "plan.docx", "", []byte("doc content"))
	if err != nil {
		t.Fatalf("Failed to upload trip document: %v", err)
	}
	if doc.DocType != "audit_plan" || doc.Title != "Plan" {
		t.Errorf("Unexpected document: %+v", doc)
	}
	if !strings.HasPrefix(doc.RelPath, "trip_docs/"+trip.TripNo+"/") {
		t.Errorf("Unexpected rel path %s", doc.RelPath)
	}

	if _, err := services.GetTripDocument(db, trip.ID+1, doc.ID); err == nil {
		t.Error("Expected an error fetching a document through the wrong trip")
	}

	if err := services.DeleteTrip(db, store, trip.ID); err != nil {
		t.Fatalf("Failed to delete trip: %v", err)
	}
	if _, err := store.Read(doc.RelPath); err == nil {
		t.Error("Expected the document file to be gone with the trip")
	}
}
