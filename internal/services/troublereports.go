// troublereports.go
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
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// eightDSearchKeywords maps search keywords onto 8D status enum values, so a
// query for 未收到 finds NOT_RECEIVED reports and "reject" finds
// RECEIVED_REJECT ones.
var eightDSearchKeywords = map[string]string{
	"不要求":    models.EightDNotRequired,
	"未收到":    models.EightDNotReceived,
	"reject": models.EightDReceivedReject,
	"pass":   models.EightDReceivedPass,
}

var allowedEightDStatus = map[string]struct{}{
	models.EightDNotRequired:    {},
	models.EightDNotReceived:    {},
	models.EightDReceivedReject: {},
	models.EightDReceivedPass:   {},
}

// trDocTypes is the document type vocabulary for TR attachments
var trDocTypes = map[string]struct{}{
	"quality_report": {},
	"8d_report":      {},
	"containment":    {},
	"evidence":       {},
	"photos":         {},
	"other":          {},
}

// TroubleReportInput carries the writable trouble report fields
type TroubleReportInput struct {
	TRNo             string `json:"tr_no"`
	SupplierCode     string `json:"supplier_code"`
	SupplierName     string `json:"supplier_name"`
	PartNumber       string `json:"part_number"`
	PartName         string `json:"part_name"`
	IssueDescription string `json:"issue_description"`
	Severity         string `json:"severity"`
	EightD           string `json:"eight_d"`
	EightDStatus     string `json:"eight_d_status"`
	Status           string `json:"status"`
	Remark           string `json:"remark"`
}

// TroubleReportPage is one page of a trouble report listing
type TroubleReportPage struct {
	Items    []models.TroubleReport `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

// normalizeEightDStatus coerces invalid input to NOT_REQUIRED
func normalizeEightDStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.EightDNotRequired
	}
	if _, ok := allowedEightDStatus[s]; !ok {
		return models.EightDNotRequired
	}
	return s
}

// ListTroubleReports returns one page of reports matching q across the
// searchable columns, newest first. The 8D keyword map widens the search so
// enum values can be found through their display keywords.
func ListTroubleReports(db *gorm.DB, q string, page, pageSize int) (*TroubleReportPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	query := db.Model(&models.TroubleReport{})
	if q = strings.TrimSpace(q); q != "" {
		var statuses []string
		qLower := strings.ToLower(q)
		for keyword, status := range eightDSearchKeywords {
			if strings.Contains(qLower, keyword) {
				statuses = append(statuses, status)
			}
		}

		cond := db.Where(
			"tr_no LIKE ? OR supplier_name LIKE ? OR part_number LIKE ? OR part_name LIKE ?"+
				" OR issue_description LIKE ? OR severity LIKE ? OR eight_d LIKE ?"+
				" OR eight_d_status LIKE ? OR status LIKE ? OR remark LIKE ?",
			like(q), like(q), like(q), like(q), like(q), like(q), like(q), like(q), like(q), like(q),
		)
		if len(statuses) > 0 {
			cond = cond.Or("eight_d_status IN ?", statuses)
		}
		query = query.Where(cond)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.TroubleReport
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &TroubleReportPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetTroubleReport retrieves one report with its documents
func GetTroubleReport(db *gorm.DB, id uint64) (*models.TroubleReport, error) {
	var tr models.TroubleReport
	if err := db.Preload("Documents").First(&tr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("trouble report %d not found", id)
		}
		return nil, err
	}
	return &tr, nil
}

// CreateTroubleReport inserts a report with a user-supplied, globally unique
// TR number.
func CreateTroubleReport(db *gorm.DB, in TroubleReportInput) (*models.TroubleReport, error) {
	trNo := strings.TrimSpace(in.TRNo)
	supplierName := strings.TrimSpace(in.SupplierName)
	issue := strings.TrimSpace(in.IssueDescription)
	if trNo == "" {
		return nil, types.NewValidationError("tr_no is required")
	}
	if supplierName == "" {
		return nil, types.NewValidationError("supplier_name is required")
	}
	if issue == "" {
		return nil, types.NewValidationError("issue_description is required")
	}

	var count int64
	if err := db.Model(&models.TroubleReport{}).Where("tr_no = ?", trNo).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.NewConflictError("tr_no %s already exists", trNo)
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = "Open"
	}

	supplierCode := strings.TrimSpace(in.SupplierCode)
	if supplierCode == "" {
		supplierCode = "N/A"
	}

	tr := models.TroubleReport{
		TRNo:             trNo,
		SupplierCode:     supplierCode,
		SupplierName:     supplierName,
		PartNumber:       strings.TrimSpace(in.PartNumber),
		PartName:         strings.TrimSpace(in.PartName),
		IssueDescription: issue,
		Severity:         strings.TrimSpace(in.Severity),
		EightD:           strings.TrimSpace(in.EightD),
		EightDStatus:     normalizeEightDStatus(in.EightDStatus),
		Status:           status,
		Remark:           strings.TrimSpace(in.Remark),
	}

	if err := db.Create(&tr).Error; err != nil {
		return nil, translateDBError(err, "tr_no %s already exists", trNo)
	}
	return &tr, nil
}

// UpdateTroubleReport modifies a report; a changed TR number is re-checked for
// global uniqueness.
func UpdateTroubleReport(db *gorm.DB, id uint64, in TroubleReportInput) (*models.TroubleReport, error) {
	tr, err := GetTroubleReport(db, id)
	if err != nil {
		return nil, err
	}

	trNo := strings.TrimSpace(in.TRNo)
	supplierName := strings.TrimSpace(in.SupplierName)
	issue := strings.TrimSpace(in.IssueDescription)
	if trNo == "" {
		return nil, types.NewValidationError("tr_no is required")
	}
	if supplierName == "" {
		return nil, types.NewValidationError("supplier_name is required")
	}
	if issue == "" {
		return nil, types.NewValidationError("issue_description is required")
	}

	if trNo != tr.TRNo {
		var count int64
		if err := db.Model(&models.TroubleReport{}).Where("tr_no = ?", trNo).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, types.NewConflictError("tr_no %s already exists", trNo)
		}
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = "Open"
	}

	tr.TRNo = trNo
	tr.SupplierName = supplierName
	tr.PartNumber = strings.TrimSpace(in.PartNumber)
	tr.PartName = strings.TrimSpace(in.PartName)
	tr.IssueDescription = issue
	tr.Severity = strings.TrimSpace(in.Severity)
	tr.EightD = strings.TrimSpace(in.EightD)
	tr.EightDStatus = normalizeEightDStatus(in.EightDStatus)
	tr.Status = status
	tr.Remark = strings.TrimSpace(in.Remark)

	if err := db.Save(tr).Error; err != nil {
		return nil, translateDBError(err, "tr_no %s already exists", trNo)
	}
	return tr, nil
}

// DeleteTroubleReport removes a report, its documents and their files
func DeleteTroubleReport(db *gorm.DB, store *attachment.Store, id uint64) error {
	tr, err := GetTroubleReport(db, id)
	if err != nil {
		return err
	}

	for _, doc := range tr.Documents {
		store.Remove(doc.RelPath)
	}

	return db.Select("Documents").Delete(tr).Error
}

// UploadTRDocument stores a file under tr_docs/<tr_no> and records it.
// Unknown doc types fall back to "other"; an empty title defaults to the
// original filename.
func UploadTRDocument(db *gorm.DB, store *attachment.Store, trID uint64,
	docType, title, remark, originalName, declaredMIME string, payload []byte) (*models.TRDocument, error) {

	tr, err := GetTroubleReport(db, trID)
	if err != nil {
		return nil, err
	}

	docType = strings.TrimSpace(docType)
	if _, ok := trDocTypes[docType]; !ok {
		docType = "other"
	}

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{attachment.FolderTRDocs, tr.TRNo},
		OriginalName: originalName,
		DeclaredMIME: declaredMIME,
		Payload:      payload,
		Allowed:      attachment.GeneralDocExtensions,
	})
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = originalName
	}

	doc := models.TRDocument{
		TRID:    trID,
		DocType: docType,
		Title:   title,
		Remark:  strings.TrimSpace(remark),
		FileMeta: models.FileMeta{
			OriginalName: originalName,
			StoredName:   stored.StoredName,
			RelPath:      stored.RelPath,
			MIME:         declaredMIME,
			Size:         stored.Size,
		},
	}

	if err := db.Create(&doc).Error; err != nil {
		store.Remove(stored.RelPath)
		return nil, err
	}
	return &doc, nil
}

// GetTRDocument retrieves one document through its owning report, so a
// document ID can never be read through someone else's TR.
func GetTRDocument(db *gorm.DB, trID, docID uint64) (*models.TRDocument, error) {
	if _, err := GetTroubleReport(db, trID); err != nil {
		return nil, err
	}

	var doc models.TRDocument
	err := db.Where("id = ? AND tr_id = ?", docID, trID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("document %d not found", docID)
		}
		return nil, err
	}
	return &doc, nil
}

// DeleteTRDocument removes the file then the metadata row
func DeleteTRDocument(db *gorm.DB, store *attachment.Store, trID, docID uint64) error {
	doc, err := GetTRDocument(db, trID, docID)
	if err != nil {
		return err
	}

	store.Remove(doc.RelPath)
	return db.Delete(doc).Error
}
