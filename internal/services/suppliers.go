// suppliers.go
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
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// SupplierInput carries the writable supplier fields
type SupplierInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// ListSuppliers returns suppliers matching q on code or name, active ones
// first, then by code.
func ListSuppliers(db *gorm.DB, q string) ([]models.Supplier, error) {
	var suppliers []models.Supplier

	query := db.Model(&models.Supplier{})
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where("code LIKE ? OR name LIKE ?", like(q), like(q))
	}

	if err := query.Order("is_active DESC, code ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// GetSupplier retrieves one supplier by ID
func GetSupplier(db *gorm.DB, id uint64) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("supplier %d not found", id)
		}
		return nil, err
	}
	return &supplier, nil
}

// GetSupplierByCode retrieves one supplier by its unique code
func GetSupplierByCode(db *gorm.DB, code string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := db.Where("code = ?", code).First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("supplier %s not found", code)
		}
		return nil, err
	}
	return &supplier, nil
}

// CreateSupplier inserts a new supplier, rejecting duplicate codes
func CreateSupplier(db *gorm.DB, in SupplierInput) (*models.Supplier, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, types.NewValidationError("code and name are required")
	}

	var count int64
	if err := db.Model(&models.Supplier{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.NewConflictError("supplier code %s already exists", code)
	}

	supplier := models.Supplier{Code: code, Name: name, IsActive: true}
	if in.IsActive != nil {
		supplier.IsActive = *in.IsActive
	}

	if err := db.Create(&supplier).Error; err != nil {
		return nil, translateDBError(err, "supplier code %s already exists", code)
	}
	return &supplier, nil
}

// UpdateSupplier modifies the mutable supplier fields (name, active flag)
func UpdateSupplier(db *gorm.DB, id uint64, in SupplierInput) (*models.Supplier, error) {
	supplier, err := GetSupplier(db, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		supplier.Name = name
	}
	if in.IsActive != nil {
		supplier.IsActive = *in.IsActive
	}

	if err := db.Model(supplier).Select("Name", "IsActive").Updates(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// SeedSuppliers inserts the embedded default suppliers when their codes are
// absent. Safe to run at every startup.
func SeedSuppliers(db *gorm.DB, csvData string) (int, error) {
	reader := csv.NewReader(strings.NewReader(csvData))
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("parse seed csv: %w", err)
	}

	inserted := 0
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			// header row
			continue
		}
		code := strings.TrimSpace(rec[0])
		name := strings.TrimSpace(rec[1])
		if code == "" {
			continue
		}

		var count int64
		if err := db.Model(&models.Supplier{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return inserted, err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Supplier{Code: code, Name: name, IsActive: true}).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// ImportSuppliersFromWorkbook upserts suppliers from an uploaded spreadsheet.
// The first sheet must carry a header row with "code" and "name" columns; an
// optional "is_active" column accepts 0/1 or true/false.
func ImportSuppliersFromWorkbook(db *gorm.DB, reader *excelize.File) (int, error) {
	sheets := reader.GetSheetList()
	if len(sheets) == 0 {
		return 0, types.NewValidationError("workbook has no sheets")
	}

	rows, err := reader.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("read workbook: %w", err)
	}
	if len(rows) < 2 {
		return 0, types.NewValidationError("workbook has no data rows")
	}

	codeCol, nameCol, activeCol := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "code":
			codeCol = i
		case "name":
			nameCol = i
		case "is_active", "active":
			activeCol = i
		}
	}
	if codeCol < 0 || nameCol < 0 {
		return 0, types.NewValidationError("workbook needs 'code' and 'name' columns")
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	imported := 0
	for _, row := range rows[1:] {
		code := cell(row, codeCol)
		if code == "" {
			continue
		}

		var supplier models.Supplier
		err := db.Where("code = ?", code).First(&supplier).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			supplier = models.Supplier{Code: code, IsActive: true}
		case err != nil:
			return imported, err
		}

		if name := cell(row, nameCol); name != "" {
			supplier.Name = name
		}
		if active := strings.ToLower(cell(row, activeCol)); active != "" {
			supplier.IsActive = active != "0" && active != "false"
		}

		if err := db.Save(&supplier).Error; err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
