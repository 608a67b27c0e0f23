// trips.go
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
	"time"

	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/sequence"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// tripDocTypes is the document type vocabulary for trip attachments
var tripDocTypes = map[string]struct{}{
	"audit_plan":        {},
	"audit_checklist":   {},
	"audit_report":      {},
	"corrective_action": {},
	"process_flowchart": {},
	"control_plan":      {},
	"test_report":       {},
	"meeting_minutes":   {},
	"travel_approval":   {},
	"expense_report":    {},
	"photos":            {},
	"other":             {},
}

var allowedTripStatus = map[string]struct{}{
	models.TripPlanning:  {},
	models.TripOngoing:   {},
	models.TripCompleted: {},
}

// TripInput carries the writable business trip fields. SupplierID selects a
// registered supplier whose code and name override the manual fields.
type TripInput struct {
	Engineer         string `json:"engineer"`
	SupplierID       uint64 `json:"supplier_id"`
	SupplierCode     string `json:"supplier_code"`
	SupplierName     string `json:"supplier_name"`
	SupplierLocation string `json:"supplier_location"`
	Purpose          string `json:"purpose"`
	AuditType        string `json:"audit_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Status           string `json:"status"`
	Notes            string `json:"notes"`
}

// TripStats counts trips by status
type TripStats struct {
	Total     int64 `json:"total"`
	Planning  int64 `json:"planning"`
	Ongoing   int64 `json:"ongoing"`
	Completed int64 `json:"completed"`
}

// TripList is the listing of trips with the status statistics
type TripList struct {
	Items []models.BusinessTrip `json:"items"`
	Stats TripStats             `json:"stats"`
}

// normalizeTripStatus coerces invalid input to planning
func normalizeTripStatus(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := allowedTripStatus[s]; !ok {
		return models.TripPlanning
	}
	return s
}

// resolveTripSupplier backfills code and name from the supplier table when a
// supplier ID is given; otherwise the manual name is used as-is.
func resolveTripSupplier(db *gorm.DB, in TripInput) (code, name string, err error) {
	code = strings.TrimSpace(in.SupplierCode)
	name = strings.TrimSpace(in.SupplierName)

	if in.SupplierID != 0 {
		supplier, err := GetSupplier(db, in.SupplierID)
		if err != nil {
			return "", "", err
		}
		code = supplier.Code
		name = supplier.Name
	}
	return code, name, nil
}

// ListTrips returns trips matching q across number, supplier, purpose and
// engineer, grouped for display by supplier then newest start date, with the
// status statistics.
func ListTrips(db *gorm.DB, q string) (*TripList, error) {
	query := db.Model(&models.BusinessTrip{})
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where(
			"trip_no LIKE ? OR supplier_name LIKE ? OR supplier_code LIKE ? OR purpose LIKE ? OR engineer LIKE ?",
			like(q), like(q), like(q), like(q), like(q),
		)
	}

	var items []models.BusinessTrip
	if err := query.Order("supplier_name ASC, start_date DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	var stats TripStats
	if err := db.Model(&models.BusinessTrip{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	for status, dst := range map[string]*int64{
		models.TripPlanning:  &stats.Planning,
		models.TripOngoing:   &stats.Ongoing,
		models.TripCompleted: &stats.Completed,
	} {
		if err := db.Model(&models.BusinessTrip{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, err
		}
	}

	return &TripList{Items: items, Stats: stats}, nil
}

// GetTrip retrieves one trip with its documents
func GetTrip(db *gorm.DB, id uint64) (*models.BusinessTrip, error) {
	var trip models.BusinessTrip
	err := db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&trip, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("business trip %d not found", id)
		}
		return nil, err
	}
	return &trip, nil
}

// CreateTrip generates the trip number and inserts the record. The day count
// is inclusive of both travel dates.
func CreateTrip(db *gorm.DB, in TripInput) (*models.BusinessTrip, error) {
	engineer := strings.TrimSpace(in.Engineer)
	purpose := strings.TrimSpace(in.Purpose)
	if engineer == "" {
		return nil, types.NewValidationError("engineer is required")
	}
	if purpose == "" {
		return nil, types.NewValidationError("purpose is required")
	}

	code, name, err := resolveTripSupplier(db, in)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, types.NewValidationError("supplier_name is required")
	}

	if strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.EndDate) == "" {
		return nil, types.NewValidationError("start_date and end_date are required")
	}
	startDate, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := ParseDate(in.EndDate)
	if err != nil {
		return nil, err
	}

	start := time.Time(startDate)
	end := time.Time(endDate)
	if end.Before(start) {
		return nil, types.NewValidationError("end_date must not be before start_date")
	}
	days := int(end.Sub(start).Hours()/24) + 1

	tripNo, err := sequence.Next(db, sequence.TripNumber, time.Now())
	if err != nil {
		return nil, err
	}

	trip := models.BusinessTrip{
		TripNo:           tripNo,
		Engineer:         engineer,
		SupplierCode:     code,
		SupplierName:     name,
		SupplierLocation: strings.TrimSpace(in.SupplierLocation),
		Purpose:          purpose,
		AuditType:        strings.TrimSpace(in.AuditType),
		StartDate:        startDate,
		EndDate:          endDate,
		Days:             days,
		Status:           models.TripPlanning,
		Notes:            strings.TrimSpace(in.Notes),
	}

	if err := db.Create(&trip).Error; err != nil {
		return nil, translateDBError(err, "trip number %s already exists", tripNo)
	}
	return &trip, nil
}

// UpdateTrip modifies a trip. Dates are only replaced when both are given and
// valid; the day count follows.
func UpdateTrip(db *gorm.DB, id uint64, in TripInput) (*models.BusinessTrip, error) {
	trip, err := GetTrip(db, id)
	if err != nil {
		return nil, err
	}

	engineer := strings.TrimSpace(in.Engineer)
	purpose := strings.TrimSpace(in.Purpose)
	if engineer == "" || purpose == "" {
		return nil, types.NewValidationError("engineer and purpose are required")
	}

	code, name, err := resolveTripSupplier(db, in)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, types.NewValidationError("supplier_name is required")
	}

	trip.Engineer = engineer
	trip.SupplierCode = code
	trip.SupplierName = name
	trip.SupplierLocation = strings.TrimSpace(in.SupplierLocation)
	trip.Purpose = purpose
	trip.AuditType = strings.TrimSpace(in.AuditType)
	trip.Status = normalizeTripStatus(in.Status)
	trip.Notes = strings.TrimSpace(in.Notes)

	if strings.TrimSpace(in.StartDate) != "" && strings.TrimSpace(in.EndDate) != "" {
		startDate, err := ParseDate(in.StartDate)
		if err != nil {
			return nil, err
		}
		endDate, err := ParseDate(in.EndDate)
		if err != nil {
			return nil, err
		}
		start := time.Time(startDate)
		end := time.Time(endDate)
		if end.Before(start) {
			return nil, types.NewValidationError("end_date must not be before start_date")
		}
		trip.StartDate = startDate
		trip.EndDate = endDate
		trip.Days = int(end.Sub(start).Hours()/24) + 1
	}

	if err := db.Save(trip).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

// DeleteTrip removes a trip, its documents and their files
func DeleteTrip(db *gorm.DB, store *attachment.Store, id uint64) error {
	trip, err := GetTrip(db, id)
	if err != nil {
		return err
	}

	for _, doc := range trip.Documents {
		store.Remove(doc.RelPath)
	}

	return db.Select("Documents").Delete(trip).Error
}

// UploadTripDocument stores a file under trip_docs/<trip_no> and records it
func UploadTripDocument(db *gorm.DB, store *attachment.Store, tripID uint64,
	docType, title, remark, originalName, declaredMIME string, payload []byte) (*models.TripDocument, error) {

	trip, err := GetTrip(db, tripID)
	if err != nil {
		return nil, err
	}

	docType = strings.TrimSpace(docType)
	if _, ok := tripDocTypes[docType]; !ok {
		docType = "other"
	}

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{attachment.FolderTripDocs, trip.TripNo},
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

	doc := models.TripDocument{
		TripID:  tripID,
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

// GetTripDocument retrieves one document through its owning trip
func GetTripDocument(db *gorm.DB, tripID, docID uint64) (*models.TripDocument, error) {
	var count int64
	if err := db.Model(&models.BusinessTrip{}).Where("id = ?", tripID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, types.NewNotFoundError("business trip %d not found", tripID)
	}

	var doc models.TripDocument
	err := db.Where("id = ? AND trip_id = ?", docID, tripID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("document %d not found", docID)
		}
		return nil, err
	}
	return &doc, nil
}

// DeleteTripDocument removes the file then the metadata row
func DeleteTripDocument(db *gorm.DB, store *attachment.Store, tripID, docID uint64) error {
	doc, err := GetTripDocument(db, tripID, docID)
	if err != nil {
		return err
	}

	store.Remove(doc.RelPath)
	return db.Delete(doc).Error
}
