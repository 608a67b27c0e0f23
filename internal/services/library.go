// library.go
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

// LibraryCategories is the file library category vocabulary
var LibraryCategories = []string{
	"standard", "checklist", "specification", "template", "procedure", "manual", "other",
}

func isLibraryCategory(c string) bool {
	for _, v := range LibraryCategories {
		if v == c {
			return true
		}
	}
	return false
}

// LibraryFileInput carries the writable library file metadata
type LibraryFileInput struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Version        string            `json:"version"`
	IssueDate      string            `json:"issue_date"`
	RelatedProcess string            `json:"related_process"`
	SupplierName   string            `json:"supplier_name"`
	PartCategory   string            `json:"part_category"`
	Tags           types.FlexStrings `json:"tags"`
}

// CategoryCount is the per-category file count for the library sidebar
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// LibraryList is the listing of library files with category counts
type LibraryList struct {
	Items      []models.LibraryFile `json:"items"`
	Total      int64                `json:"total"`
	Categories []CategoryCount      `json:"categories"`
}

// ListLibraryFiles returns library files filtered by category and matched by q
// across title, description, tags, original filename and supplier, newest
// first, with per-category counts.
func ListLibraryFiles(db *gorm.DB, q, category string) (*LibraryList, error) {
	query := db.Model(&models.LibraryFile{})

	if category = strings.TrimSpace(category); category != "" && isLibraryCategory(category) {
		query = query.Where("category = ?", category)
	}
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where(
			"title LIKE ? OR description LIKE ? OR tags LIKE ? OR original_name LIKE ? OR supplier_name LIKE ?",
			like(q), like(q), like(q), like(q), like(q),
		)
	}

	var items []models.LibraryFile
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := db.Model(&models.LibraryFile{}).Count(&total).Error; err != nil {
		return nil, err
	}

	counts := make([]CategoryCount, 0, len(LibraryCategories))
	for _, cat := range LibraryCategories {
		var n int64
		if err := db.Model(&models.LibraryFile{}).Where("category = ?", cat).Count(&n).Error; err != nil {
			return nil, err
		}
		counts = append(counts, CategoryCount{Category: cat, Count: n})
	}

	return &LibraryList{Items: items, Total: total, Categories: counts}, nil
}

// GetLibraryFile retrieves one library file by ID
func GetLibraryFile(db *gorm.DB, id uint64) (*models.LibraryFile, error) {
	var file models.LibraryFile
	if err := db.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("library file %d not found", id)
		}
		return nil, err
	}
	return &file, nil
}

// UploadLibraryFile stores a file under file_library/<category> and records
// it. The title defaults to the original filename; an unknown category is
// rejected rather than coerced, the library sidebar depends on the vocabulary.
func UploadLibraryFile(db *gorm.DB, store *attachment.Store, in LibraryFileInput,
	originalName, declaredMIME string, payload []byte) (*models.LibraryFile, error) {

	category := strings.TrimSpace(in.Category)
	if !isLibraryCategory(category) {
		return nil, types.NewValidationError("invalid category: %s", category)
	}

	issueDate, err := ParseOptionalDate(in.IssueDate)
	if err != nil {
		return nil, err
	}

	tags, err := models.TagsJSON(in.Tags.Slice())
	if err != nil {
		return nil, err
	}

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{attachment.FolderFileLibrary, category},
		OriginalName: originalName,
		DeclaredMIME: declaredMIME,
		Payload:      payload,
		Allowed:      attachment.LibraryExtensions,
	})
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = originalName
	}

	file := models.LibraryFile{
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Category:       category,
		Version:        strings.TrimSpace(in.Version),
		IssueDate:      issueDate,
		RelatedProcess: strings.TrimSpace(in.RelatedProcess),
		SupplierName:   strings.TrimSpace(in.SupplierName),
		PartCategory:   strings.TrimSpace(in.PartCategory),
		Tags:           tags,
		FileMeta: models.FileMeta{
			OriginalName: originalName,
			StoredName:   stored.StoredName,
			RelPath:      stored.RelPath,
			MIME:         declaredMIME,
			Size:         stored.Size,
		},
	}

	if err := db.Create(&file).Error; err != nil {
		store.Remove(stored.RelPath)
		return nil, err
	}
	return &file, nil
}

// UpdateLibraryFile modifies the metadata of a library file; the stored file
// itself is immutable.
func UpdateLibraryFile(db *gorm.DB, id uint64, in LibraryFileInput) (*models.LibraryFile, error) {
	file, err := GetLibraryFile(db, id)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(in.Category)
	if !isLibraryCategory(category) {
		return nil, types.NewValidationError("invalid category: %s", category)
	}

	issueDate, err := ParseOptionalDate(in.IssueDate)
	if err != nil {
		return nil, err
	}

	tags, err := models.TagsJSON(in.Tags.Slice())
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = file.OriginalName
	}

	file.Title = title
	file.Description = strings.TrimSpace(in.Description)
	file.Category = category
	file.Version = strings.TrimSpace(in.Version)
	file.IssueDate = issueDate
	file.RelatedProcess = strings.TrimSpace(in.RelatedProcess)
	file.SupplierName = strings.TrimSpace(in.SupplierName)
	file.PartCategory = strings.TrimSpace(in.PartCategory)
	file.Tags = tags

	if err := db.Save(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// TouchLibraryView bumps the view counter
func TouchLibraryView(db *gorm.DB, id uint64) error {
	return db.Model(&models.LibraryFile{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// TouchLibraryDownload bumps the download counter
func TouchLibraryDownload(db *gorm.DB, id uint64) error {
	return db.Model(&models.LibraryFile{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

// DeleteLibraryFile removes the file then the metadata row
func DeleteLibraryFile(db *gorm.DB, store *attachment.Store, id uint64) error {
	file, err := GetLibraryFile(db, id)
	if err != nil {
		return err
	}

	store.Remove(file.RelPath)
	return db.Delete(file).Error
}
