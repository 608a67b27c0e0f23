package services_test

import (
	"errors"
	"testing"

	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// TestCreateTroubleReport tests creation with defaults
func TestCreateTroubleReport(t *testing.T) {
	db := setupTestDB(t)

	tr, err := services.CreateTroubleReport(db, services.TroubleReportInput{
		TRNo:             "TR-100",
		SupplierName:     "NOCO",
		IssueDescription: "Cracked housing on incoming lot",
	})
	if err != nil {
		t.Fatalf("Failed to create trouble report: %v", err)
	}

	if tr.Status != "Open" {
		t.Errorf("Expected status Open, got %s", tr.Status)
	}
	if tr.SupplierCode != "N/A" {
		t.Errorf("Expected supplier code N/A, got %s", tr.SupplierCode)
	}
	if tr.EightDStatus != models.EightDNotRequired {
		t.Errorf("Expected 8D status NOT_REQUIRED, got %s", tr.EightDStatus)
	}
}

// TestCreateTroubleReportRequiredFields tests validation of required fields
func TestCreateTroubleReportRequiredFields(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.CreateTroubleReport(db, services.TroubleReportInput{
		TRNo: "TR-101",
	})
	if err == nil {
		t.Fatal("Expected a validation error")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeValidation {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

// TestCreateTroubleReportDuplicateNumber tests TR number uniqueness
func TestCreateTroubleReportDuplicateNumber(t *testing.T) {
	db := setupTestDB(t)

	in := services.TroubleReportInput{
		TRNo:             "TR-100",
		SupplierName:     "NOCO",
		IssueDescription: "First issue",
	}
	if _, err := services.CreateTroubleReport(db, in); err != nil {
		t.Fatalf("Failed to create trouble report: %v", err)
	}

	_, err := services.CreateTroubleReport(db, in)
	if err == nil {
		t.Fatal("Expected a conflict error")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeConflict {
		t.Errorf("Expected a conflict error, got %v", err)
	}
}

// TestListTroubleReportsKeywordSearch tests the 8D status keyword widening
func TestListTroubleReportsKeywordSearch(t *testing.T) {
	db := setupTestDB(t)

	mk := func(no, status string) {
		_, err := services.CreateTroubleReport(db, services.TroubleReportInput{
			TRNo:             no,
			SupplierName:     "NOCO",
			IssueDescription: "issue",
			EightDStatus:     status,
		})
		if err != nil {
			t.Fatalf("Failed to create trouble report %s: %v", no, err)
		}
	}
	mk("TR-1", models.EightDNotReceived)
	mk("TR-2", models.EightDReceivedReject)
	mk("TR-3", models.EightDReceivedPass)

	page, err := services.ListTroubleReports(db, "未收到", 1, 20)
	if err != nil {
		t.Fatalf("Failed to list trouble reports: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].TRNo != "TR-1" {
		t.Errorf("Expected only TR-1 for 未收到, got %+v", page.Items)
	}

	page, err = services.ListTroubleReports(db, "reject", 1, 20)
	if err != nil {
		t.Fatalf("Failed to list trouble reports: %v", err)
	}
	if page.Total != 1 || page.Items[0].TRNo != "TR-2" {
		t.Errorf("Expected only TR-2 for reject, got %+v", page.Items)
	}
}

// TestUpdateTroubleReportNumberConflict tests renumbering onto a taken number
func TestUpdateTroubleReportNumberConflict(t *testing.T) {
	db := setupTestDB(t)

	first, err := services.CreateTroubleReport(db, services.TroubleReportInput{
		TRNo: "TR-1", SupplierName: "NOCO", IssueDescription: "issue",
	})
	if err != nil {
		t.Fatalf("Failed to create trouble report: %v", err)
	}
	if _, err := services.CreateTroubleReport(db, services.TroubleReportInput{
		TRNo: "TR-2", SupplierName: "NOCO", IssueDescription: "issue",
	}); err != nil {
		t.Fatalf("Failed to create trouble report: %v", err)
	}

	_, err = services.UpdateTroubleReport(db, first.ID, services.TroubleReportInput{
		TRNo: "TR-2", SupplierName: "NOCO", IssueDescription: "issue",
	})
	if err == nil {
		t.Fatal("Expected a conflict error")
	}
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Type != types.ErrTypeConflict {
		t.Errorf("Expected a conflict error, got %v", err)
	}
}

// TestUploadTRDocumentLifecycle tests the TR document upload and delete cycle
func TestUploadTRDocumentLifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	tr, err := services.CreateTroubleReport(db, services.TroubleReportInput{
		TRNo: "TR-100", SupplierName: "NOCO", IssueDescription: "issue",
	})
	if err != nil {
		t.Fatalf("Failed to create trouble report: %v", err)
	}

	doc, err := services.UploadTRDocument(db, store, tr.ID,
		"quality_report", "", "", "report.pdf", "application/pdf", []byte("pdf content"))
	if err != nil {
		t.Fatalf("Failed to upload TR document: %v", err)
	}

	if doc.DocType != "quality_report" {
		t.Errorf("Expected doc type quality_report, got %s", doc.DocType)
	}
	if doc.Title != "report.pdf" {
		t.Errorf("Expected title to default to the original name, got %s", doc.Title)
	}
	if doc.OriginalName != "report.pdf" {
		t.Errorf("Expected original name report.pdf, got %s", doc.OriginalName)
	}

	// Invalid doc types fall back to other
	doc2, err := services.UploadTRDocument(db, store, tr.ID,
		"bogus", "", "", "extra.pdf", "application/pdf", []byte("more"))
	if err != nil {
		t.Fatalf("Failed to upload TR document: %v", err)
	}
	if doc2.DocType != "other" {
		t.Errorf("Expected doc type other, got %s", doc2.DocType)
	}

	// Ownership is scoped
	if _, err := services.GetTRDocument(db, tr.ID+1, doc.ID); err == nil {
		t.Error("Expected an error fetching a document through the wrong TR")
	}

	if err := services.DeleteTRDocument(db, store, tr.ID, doc.ID); err != nil {
		t.Fatalf("Failed to delete TR document: %v", err)
	}
	if _, err := services.GetTRDocument(db, tr.ID, doc.ID); err == nil {
		t.Error("Expected the document to be gone")
	}
}
