// audits.go
//
// Supplier quality management portal data service
// Copyright (c) 2026 SQM Works <oss@sqmworks.dev>
//
// This file is part of supplier-portal.
// supplier-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// supplier-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with supplier-portal.
// If not, see <https://www.gnu.org/licenses/>.

package services

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/sequence"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// actionPlanSheetNames are the sheet name fragments that identify the ANFIA
// action plan within a workbook.
var actionPlanSheetNames = []string{
	"Action Plan", "ACTION PLAN", "Action plan", "action plan", "行动计划", "ActionPlan",
}

// actionPlanFirstRow is the first data row of the action plan sheet; rows
// above it are the title block and column headers.
const actionPlanFirstRow = 23

// AuditUploadInput carries the metadata fields of an audit report upload
type AuditUploadInput struct {
	AuditType    string
	SupplierName string
	Auditor      string
	AuditDate    string
	Notes        string
}

// FindingInput carries the writable fields of a manually added finding
type FindingInput struct {
	ClauseNo          string `json:"clause_no"`
	ClauseTitle       string `json:"clause_title"`
	Finding           string `json:"finding"`
	Evidence          string `json:"evidence"`
	Severity          string `json:"severity"`
	ResponsiblePerson string `json:"responsible_person"`
	TargetDate        string `json:"target_date"`
}

// FindingUpdateInput carries the fields an open finding can be updated with
type FindingUpdateInput struct {
	RootCause          string `json:"root_cause"`
	CorrectiveAction   string `json:"corrective_action"`
	PreventiveAction   string `json:"preventive_action"`
	ResponsiblePerson  string `json:"responsible_person"`
	Status             string `json:"status"`
	VerificationResult string `json:"verification_result"`
	TargetDate         string `json:"target_date"`
	Comment            string `json:"comment"`
}

// AuditStats summarizes the finding workload across all reports
type AuditStats struct {
	TotalReports int64 `json:"total_reports"`
	OpenFindings int64 `json:"open_findings"`
	InProgress   int64 `json:"in_progress"`
	Overdue      int64 `json:"overdue"`
}

// AuditReportPage is one page of an audit report listing
type AuditReportPage struct {
	Items    []models.AuditReport `json:"items"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Stats    AuditStats           `json:"stats"`
}

// ListAuditReports returns one page of reports matching q, newest first,
// together with the global finding statistics.
func ListAuditReports(db *gorm.DB, q string, page, pageSize int) (*AuditReportPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	query := db.Model(&models.AuditReport{})
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where(
			"audit_no LIKE ? OR supplier_name LIKE ? OR auditor LIKE ? OR audit_type LIKE ?",
			like(q), like(q), like(q), like(q),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.AuditReport
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	stats, err := auditStats(db)
	if err != nil {
		return nil, err
	}

	return &AuditReportPage{Items: items, Total: total, Page: page, PageSize: pageSize, Stats: *stats}, nil
}

func auditStats(db *gorm.DB) (*AuditStats, error) {
	var stats AuditStats
	if err := db.Model(&models.AuditReport{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.AuditFinding{}).Where("status = ?", models.FindingOpen).
		Count(&stats.OpenFindings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.AuditFinding{}).Where("status = ?", models.FindingInProgress).
		Count(&stats.InProgress).Error; err != nil {
		return nil, err
	}
	today := datatypes.Date(time.Now())
	if err := db.Model(&models.AuditFinding{}).
		Where("target_date < ? AND status IN ?", today,
			[]string{models.FindingOpen, models.FindingInProgress}).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetAuditReport retrieves one report with its findings, optionally filtered
// by finding status, ordered by clause number.
func GetAuditReport(db *gorm.DB, id uint64, statusFilter string) (*models.AuditReport, error) {
	var report models.AuditReport
	if err := db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("audit report %d not found", id)
		}
		return nil, err
	}

	query := db.Where("report_id = ?", id)
	if statusFilter = strings.TrimSpace(statusFilter); statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}
	if err := query.Order("clause_no ASC").Find(&report.Findings).Error; err != nil {
		return nil, err
	}

	return &report, nil
}

// UploadAuditReport saves the report file, generates the audit number and, for
// ANFIA spreadsheets, extracts findings from the action plan sheet. A workbook
// without a recognizable action plan still uploads; findings can be added
// manually afterwards.
func UploadAuditReport(db *gorm.DB, store *attachment.Store, in AuditUploadInput,
	originalName, declaredMIME string, payload []byte) (*models.AuditReport, error) {

	auditType := strings.TrimSpace(in.AuditType)
	if auditType == "" {
		auditType = "ANFIA"
	}
	supplierName := strings.TrimSpace(in.SupplierName)
	auditor := strings.TrimSpace(in.Auditor)
	if supplierName == "" || auditor == "" || strings.TrimSpace(in.AuditDate) == "" {
		return nil, types.NewValidationError("supplier_name, auditor and audit_date are required")
	}

	auditDate, err := ParseDate(in.AuditDate)
	if err != nil {
		return nil, err
	}

	auditNo, err := sequence.Next(db, sequence.AuditNumber, time.Now())
	if err != nil {
		return nil, err
	}

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{attachment.FolderAuditReports, auditNo},
		OriginalName: originalName,
		DeclaredMIME: declaredMIME,
		Payload:      payload,
		Allowed:      attachment.AuditReportExtensions,
	})
	if err != nil {
		return nil, err
	}

	report := models.AuditReport{
		AuditNo:      auditNo,
		AuditType:    auditType,
		SupplierName: supplierName,
		AuditDate:    auditDate,
		Auditor:      auditor,
		Notes:        strings.TrimSpace(in.Notes),
		Status:       "open",
		FileMeta: models.FileMeta{
			OriginalName: originalName,
			StoredName:   stored.StoredName,
			RelPath:      stored.RelPath,
			MIME:         declaredMIME,
			Size:         stored.Size,
		},
	}

	ext, _ := attachment.ResolveExtension(originalName, declaredMIME)
	var findings []models.AuditFinding
	if auditType == "ANFIA" && (ext == "xlsx" || ext == "xls" || ext == "xlsm") {
		findings, err = extractActionPlanFindings(payload)
		if err != nil {
			// Extraction problems never fail the upload.
			log.Printf("action plan extraction: %v", err)
			findings = nil
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return translateDBError(err, "audit number %s already exists", auditNo)
		}
		for i := range findings {
			findings[i].ReportID = report.ID
			if err := tx.Create(&findings[i]).Error; err != nil {
				return err
			}
		}
		if len(findings) > 0 {
			report.TotalFindings = len(findings)
			report.OpenFindings = len(findings)
			report.ClosedFindings = 0
			return tx.Model(&report).
				Select("TotalFindings", "OpenFindings", "ClosedFindings").
				Updates(&report).Error
		}
		return nil
	})
	if err != nil {
		store.Remove(stored.RelPath)
		return nil, err
	}

	report.Findings = findings
	return &report, nil
}

// extractActionPlanFindings reads the ANFIA action plan sheet: clause number
// in column A, finding text in B, severity in C, corrective action in D,
// responsible person in E, target date in F. Rows without a clause or finding
// are skipped.
func extractActionPlanFindings(payload []byte) ([]models.AuditFinding, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	var sheet string
	for _, name := range wb.GetSheetList() {
		for _, candidate := range actionPlanSheetNames {
			if strings.Contains(name, candidate) {
				sheet = name
				break
			}
		}
		if sheet != "" {
			break
		}
	}
	if sheet == "" {
		return nil, nil
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	cell := func(row []string, idx int) string {
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var findings []models.AuditFinding
	for i := actionPlanFirstRow - 1; i < len(rows); i++ {
		row := rows[i]

		clauseNo := cleanField(cell(row, 0))
		if clauseNo == "" {
			continue
		}
		findingText := cleanField(cell(row, 1))
		if findingText == "" {
			continue
		}

		findings = append(findings, models.AuditFinding{
			ClauseNo:          clauseNo,
			Requirement:       "Requirement " + clauseNo,
			Finding:           findingText,
			Severity:          mapSeverity(cell(row, 2)),
			CorrectiveAction:  cleanField(cell(row, 3)),
			ResponsiblePerson: cleanField(cell(row, 4)),
			TargetDate:        parseFlexibleDate(cell(row, 5)),
			Status:            models.FindingOpen,
		})
	}

	return findings, nil
}

// mapSeverity normalizes the spreadsheet severity notation. ANFIA uses roman
// numerals III/II/I alongside the words, so III must be checked before II
// before I.
func mapSeverity(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.SeverityMinor
	}
	switch {
	case strings.Contains(raw, "major"), strings.Contains(raw, "iii"), raw == "3":
		return models.SeverityMajor
	case strings.Contains(raw, "ii"), raw == "2":
		return models.SeverityMinor
	case strings.Contains(raw, "i"), raw == "1":
		return models.SeverityObservation
	default:
		return models.SeverityMinor
	}
}

// AddFinding appends a manually entered finding to a report and refreshes the
// report statistics. This is the path for PDF reports, which have nothing to
// extract.
func AddFinding(db *gorm.DB, reportID uint64, in FindingInput) (*models.AuditFinding, error) {
	report, err := GetAuditReport(db, reportID, "")
	if err != nil {
		return nil, err
	}

	clauseNo := strings.TrimSpace(in.ClauseNo)
	findingText := strings.TrimSpace(in.Finding)
	if clauseNo == "" {
		return nil, types.NewValidationError("clause_no is required")
	}
	if findingText == "" {
		return nil, types.NewValidationError("finding is required")
	}

	severity := strings.TrimSpace(in.Severity)
	switch severity {
	case models.SeverityMajor, models.SeverityMinor, models.SeverityObservation:
	default:
		severity = models.SeverityObservation
	}

	targetDate, err := ParseOptionalDate(in.TargetDate)
	if err != nil {
		return nil, err
	}

	finding := models.AuditFinding{
		ReportID:          report.ID,
		ClauseNo:          clauseNo,
		ClauseTitle:       strings.TrimSpace(in.ClauseTitle),
		Finding:           findingText,
		Evidence:          strings.TrimSpace(in.Evidence),
		Severity:          severity,
		ResponsiblePerson: strings.TrimSpace(in.ResponsiblePerson),
		TargetDate:        targetDate,
		Status:            models.FindingOpen,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&finding).Error; err != nil {
			return err
		}
		return refreshReportStatistics(tx, report.ID)
	})
	if err != nil {
		return nil, err
	}
	return &finding, nil
}

// UpdateFinding applies a corrective action update. A status change or a
// non-empty comment adds a progress history row; closing a finding stamps the
// completion and verification dates.
func UpdateFinding(db *gorm.DB, findingID uint64, in FindingUpdateInput) (*models.AuditFinding, error) {
	var finding models.AuditFinding
	if err := db.First(&finding, findingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("finding %d not found", findingID)
		}
		return nil, err
	}

	var report models.AuditReport
	if err := db.First(&report, finding.ReportID).Error; err != nil {
		return nil, err
	}

	oldStatus := finding.Status

	newStatus := strings.TrimSpace(in.Status)
	switch newStatus {
	case models.FindingOpen, models.FindingInProgress, models.FindingClosed:
	case "":
		newStatus = models.FindingOpen
	default:
		return nil, types.NewValidationError("invalid finding status: %s", newStatus)
	}

	finding.RootCause = strings.TrimSpace(in.RootCause)
	finding.CorrectiveAction = strings.TrimSpace(in.CorrectiveAction)
	finding.PreventiveAction = strings.TrimSpace(in.PreventiveAction)
	finding.ResponsiblePerson = strings.TrimSpace(in.ResponsiblePerson)
	finding.VerificationResult = strings.TrimSpace(in.VerificationResult)
	finding.Status = newStatus

	if targetDate, err := ParseOptionalDate(in.TargetDate); err == nil && targetDate != nil {
		finding.TargetDate = targetDate
	}

	if newStatus == models.FindingClosed && oldStatus != models.FindingClosed {
		today := datatypes.Date(time.Now())
		finding.ActualCompletion = &today
		finding.VerificationDate = &today
	}

	comment := strings.TrimSpace(in.Comment)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&finding).Error; err != nil {
			return err
		}

		if comment != "" || oldStatus != finding.Status {
			updateType := "supplier_update"
			if oldStatus != finding.Status {
				updateType = "status_change"
			}
			progress := models.FindingProgress{
				FindingID:  finding.ID,
				UpdateType: updateType,
				OldStatus:  oldStatus,
				NewStatus:  finding.Status,
				Comment:    comment,
				UpdatedBy:  report.Auditor,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}

		return refreshReportStatistics(tx, finding.ReportID)
	})
	if err != nil {
		return nil, err
	}
	return &finding, nil
}

// refreshReportStatistics recomputes the cached finding counts of one report
func refreshReportStatistics(tx *gorm.DB, reportID uint64) error {
	var total, closed int64
	if err := tx.Model(&models.AuditFinding{}).Where("report_id = ?", reportID).
		Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.AuditFinding{}).
		Where("report_id = ? AND status = ?", reportID, models.FindingClosed).
		Count(&closed).Error; err != nil {
		return err
	}

	return tx.Model(&models.AuditReport{}).Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"total_findings":  total,
			"open_findings":   total - closed,
			"closed_findings": closed,
		}).Error
}

// ListFindingProgress returns the history entries of one finding, oldest first
func ListFindingProgress(db *gorm.DB, findingID uint64) ([]models.FindingProgress, error) {
	var count int64
	if err := db.Model(&models.AuditFinding{}).Where("id = ?", findingID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, types.NewNotFoundError("finding %d not found", findingID)
	}

	var progress []models.FindingProgress
	if err := db.Where("finding_id = ?", findingID).
		Order("created_at ASC").Find(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// DeleteAuditReport removes the report file, then the report with its findings
func DeleteAuditReport(db *gorm.DB, store *attachment.Store, id uint64) error {
	report, err := GetAuditReport(db, id, "")
	if err != nil {
		return err
	}

	store.Remove(report.RelPath)
	return db.Select("Findings").Delete(report).Error
}
