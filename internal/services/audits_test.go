package services_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/services"
)

// buildActionPlanWorkbook builds an ANFIA-style workbook with an action plan
// sheet whose data rows start at row 23
func buildActionPlanWorkbook(t *testing.T, rows [][]string) []byte {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", "Action Plan"); err != nil {
		t.Fatalf("Failed to rename sheet: %v", err)
	}

	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, 23+i)
			if err != nil {
				t.Fatalf("Failed to build cell name: %v", err)
			}
			if err := wb.SetCellValue("Action Plan", cell, val); err != nil {
				t.Fatalf("Failed to set cell %s: %v", cell, err)
			}
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}

// TestUploadAuditReportExtractsFindings tests the ANFIA action plan extraction
func TestUploadAuditReportExtractsFindings(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	payload := buildActionPlanWorkbook(t, [][]string{
		{"7.5.1", "Documented information not controlled", "Major (III)", "Revise procedure", "Li Wei", "2026-04-30"},
		{"", "row without a clause is skipped"},
		{"8.4.2", "No incoming inspection records", "II", "Add inspection log", "Zhang Min", "30/04/2026"},
		{"9.2", "Internal audit overdue", "I", "", "", ""},
	})

	report, err := services.UploadAuditReport(db, store, services.AuditUploadInput{
		SupplierName: "NOCO",
		Auditor:      "J. Doe",
		AuditDate:    "2026-03-14",
	}, "audit.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
	if err != nil {
		t.Fatalf("Failed to upload audit report: %v", err)
	}

	if report.AuditType != "ANFIA" {
		t.Errorf("Expected audit type ANFIA, got %s", report.AuditType)
	}
	if len(report.Findings) != 3 {
		t.Fatalf("Expected 3 extracted findings, got %d", len(report.Findings))
	}

	f := report.Findings[0]
	if f.ClauseNo != "7.5.1" || f.Severity != models.SeverityMajor {
		t.Errorf("Unexpected first finding: %+v", f)
	}
	if f.Requirement != "Requirement 7.5.1" {
		t.Errorf("Expected derived requirement text, got %s", f.Requirement)
	}
	if f.TargetDate == nil {
		t.Error("Expected a parsed target date")
	}

	if report.Findings[1].Severity != models.SeverityMinor {
		t.Errorf("Expected II to map to minor, got %s", report.Findings[1].Severity)
	}
	if report.Findings[2].Severity != models.SeverityObservation {
		t.Errorf("Expected I to map to observation, got %s", report.Findings[2].Severity)
	}

	if report.TotalFindings != 3 || report.OpenFindings != 3 || report.ClosedFindings != 0 {
		t.Errorf("Unexpected statistics: total=%d open=%d closed=%d",
			report.TotalFindings, report.OpenFindings, report.ClosedFindings)
	}

	// The uploaded workbook is stored and readable
	data, err := store.Read(report.RelPath)
	if err != nil {
		t.Fatalf("Failed to read stored report: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("Stored report differs from the uploaded payload")
	}
}

// TestUploadAuditReportWithoutActionPlan tests that a workbook without the
// sheet still uploads cleanly
func TestUploadAuditReportWithoutActionPlan(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	wb := excelize.NewFile()
	buf, err := wb.WriteToBuffer()
	wb.Close()
	if err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}

	report, err := services.UploadAuditReport(db, store, services.AuditUploadInput{
		SupplierName: "NOCO",
		Auditor:      "J. Doe",
		AuditDate:    "2026-03-14",
	}, "audit.xlsx", "", buf.Bytes())
	if err != nil {
		t.Fatalf("Failed to upload audit report: %v", err)
	}
	if len(report.Findings) != 0 || report.TotalFindings != 0 {
		t.Errorf("Expected no findings, got %d", len(report.Findings))
	}
}

// TestUpdateFindingCloseStampsDates tests the close transition
func TestUpdateFindingCloseStampsDates(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	payload := buildActionPlanWorkbook(t, [][]string{
		{"7.5.1", "Finding text", "III", "", "", ""},
	})
	report, err := services.UploadAuditReport(db, store, services.AuditUploadInput{
		SupplierName: "NOCO",
		Auditor:      "J. Doe",
		AuditDate:    "2026-03-14",
	}, "audit.xlsx", "", payload)
	if err != nil {
		t.Fatalf("Failed to upload audit report: %v", err)
	}
	findingID := report.Findings[0].ID

	updated, err := services.UpdateFinding(db, findingID, services.FindingUpdateInput{
		RootCause:        "Missing revision control",
		CorrectiveAction: "Procedure revised",
		Status:           models.FindingClosed,
		Comment:          "Verified on site",
	})
	if err != nil {
		t.Fatalf("Failed to update finding: %v", err)
	}

	if updated.Status != models.FindingClosed {
		t.Errorf("Expected status closed, got %s", updated.Status)
	}
	if updated.ActualCompletion == nil || updated.VerificationDate == nil {
		t.Error("Expected completion and verification dates to be stamped")
	}

	// A status change records a progress entry
	progress, err := services.ListFindingProgress(db, findingID)
	if err != nil {
		t.Fatalf("Failed to list finding progress: %v", err)
	}
	if len(progress) == 0 {
		t.Fatal("Expected at least one progress entry")
	}
	last := progress[len(progress)-1]
	if last.NewStatus != models.FindingClosed {
		t.Errorf("Expected progress new status closed, got %s", last.NewStatus)
	}

	// The report statistics follow the close
	refreshed, err := services.GetAuditReport(db, report.ID, "")
	if err != nil {
		t.Fatalf("Failed to reload report: %v", err)
	}
	if refreshed.OpenFindings != 0 || refreshed.ClosedFindings != 1 {
		t.Errorf("Unexpected statistics after close: open=%d closed=%d",
			refreshed.OpenFindings, refreshed.ClosedFindings)
	}
}

// TestAddFindingRefreshesStatistics tests manual finding entry for PDF reports
func TestAddFindingRefreshesStatistics(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	report, err := services.UploadAuditReport(db, store, services.AuditUploadInput{
		AuditType:    "VDA",
		SupplierName: "NOCO",
		Auditor:      "J. Doe",
		AuditDate:    "2026-03-14",
	}, "report.pdf", "application/pdf", []byte("pdf content"))
	if err != nil {
		t.Fatalf("Failed to upload audit report: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := services.AddFinding(db, report.ID, services.FindingInput{
			ClauseNo: fmt.Sprintf("4.%d", i+1),
			Finding:  "Manually recorded finding",
		})
		if err != nil {
			t.Fatalf("Failed to add finding: %v", err)
		}
	}

	refreshed, err := services.GetAuditReport(db, report.ID, "")
	if err != nil {
		t.Fatalf("Failed to reload report: %v", err)
	}
	if refreshed.TotalFindings != 2 || refreshed.OpenFindings != 2 {
		t.Errorf("Unexpected statistics: total=%d open=%d",
			refreshed.TotalFindings, refreshed.OpenFindings)
	}
}

// TestDeleteAuditReportRemovesFile tests that deletion removes the stored file
func TestDeleteAuditReportRemovesFile(t *testing.T) {
	db := setupTestDB(t)
	store := setupTestStore(t)

	report, err := services.UploadAuditReport(db, store, services.AuditUploadInput{
		SupplierName: "NOCO",
		Auditor:      "J. Doe",
		AuditDate:    "2026-03-14",
	}, "report.pdf", "application/pdf", []byte("pdf content"))
	if err != nil {
		t.Fatalf("Failed to upload audit report: %v", err)
	}

	if err := services.DeleteAuditReport(db, store, report.ID); err != nil {
		t.Fatalf("Failed to delete audit report: %v", err)
	}

	if _, err := services.GetAuditReport(db, report.ID, ""); err == nil {
		t.Error("Expected the report to be gone")
	}
	if _, err := store.Read(report.RelPath); err == nil {
		t.Error("Expected the stored file to be gone")
	}
}
