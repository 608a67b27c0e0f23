package services

import (
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// PartInput carries the writable part fields
type PartInput struct {
	PN          string `json:"pn"`
	Description string `json:"description"`
	Project     string `json:"project"`
	Remark      string `json:"remark"`
}

// ListParts returns the parts of one supplier, filtered by q on part number,
// description or project.
func ListParts(db *gorm.DB, supplierID uint64, q string) ([]models.Part, error) {
	if _, err := GetSupplier(db, supplierID); err != nil {
		return nil, err
	}

	var parts []models.Part
	query := db.Where("supplier_id = ?", supplierID)
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where("pn LIKE ? OR description LIKE ? OR project LIKE ?", like(q), like(q), like(q))
	}

	if err := query.Order("pn ASC").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// GetPart retrieves one part of one supplier. Part IDs are always resolved
// through their owning supplier so a part can never be read across suppliers.
func GetPart(db *gorm.DB, supplierID, partID uint64) (*models.Part, error) {
	var part models.Part
	err := db.Where("id = ? AND supplier_id = ?", partID, supplierID).First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("part %d not found", partID)
		}
		return nil, err
	}
	return &part, nil
}

// CreatePart inserts a part, rejecting a duplicate part number for the same
// supplier. The same part number under a different supplier is fine.
func CreatePart(db *gorm.DB, supplierID uint64, in PartInput) (*models.Part, error) {
	if _, err := GetSupplier(db, supplierID); err != nil {
		return nil, err
	}

	pn := strings.TrimSpace(in.PN)
	if pn == "" {
		return nil, types.NewValidationError("pn is required")
	}

	var count int64
	if err := db.Model(&models.Part{}).
		Where("supplier_id = ? AND pn = ?", supplierID, pn).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.NewConflictError("part %s already exists for this supplier", pn)
	}

	part := models.Part{
		SupplierID:  supplierID,
		PN:          pn,
		Description: strings.TrimSpace(in.Description),
		Project:     strings.TrimSpace(in.Project),
		Remark:      strings.TrimSpace(in.Remark),
	}
	if err := db.Create(&part).Error; err != nil {
		return nil, translateDBError(err, "part %s already exists for this supplier", pn)
	}
	return &part, nil
}

// UpdatePart modifies the descriptive part fields; the part number is immutable
func UpdatePart(db *gorm.DB, supplierID, partID uint64, in PartInput) (*models.Part, error) {
	part, err := GetPart(db, supplierID, partID)
	if err != nil {
		return nil, err
	}

	part.Description = strings.TrimSpace(in.Description)
	part.Project = strings.TrimSpace(in.Project)
	part.Remark = strings.TrimSpace(in.Remark)

	if err := db.Model(part).Select("Description", "Project", "Remark").Updates(part).Error; err != nil {
		return nil, err
	}
	return part, nil
}

// DeletePart removes a part with its drawings, files first
func DeletePart(db *gorm.DB, store *attachment.Store, supplierID, partID uint64) error {
	part, err := GetPart(db, supplierID, partID)
	if err != nil {
		return err
	}

	var drawings []models.Drawing
	if err := db.Where("part_id = ?", part.ID).Find(&drawings).Error; err != nil {
		return err
	}
	for _, d := range drawings {
		store.Remove(d.RelPath)
	}

	return db.Select("Drawings").Delete(part).Error
}

// DrawingInput carries the metadata fields of a drawing upload
type DrawingInput struct {
	Revision      string
	Title         string
	Remark        string
	EffectiveDate string
}

// ListDrawings returns the drawings of one part, newest revision first
func ListDrawings(db *gorm.DB, supplierID, partID uint64) ([]models.Drawing, error) {
	if _, err := GetPart(db, supplierID, partID); err != nil {
		return nil, err
	}

	var drawings []models.Drawing
	if err := db.Where("part_id = ?", partID).
		Order("created_at DESC").Find(&drawings).Error; err != nil {
		return nil, err
	}
	return drawings, nil
}

// GetDrawing retrieves one drawing through its owning supplier and part
func GetDrawing(db *gorm.DB, supplierID, partID, drawingID uint64) (*models.Drawing, error) {
	if _, err := GetPart(db, supplierID, partID); err != nil {
		return nil, err
	}

	var drawing models.Drawing
	err := db.Where("id = ? AND part_id = ?", drawingID, partID).First(&drawing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("drawing %d not found", drawingID)
		}
		return nil, err
	}
	return &drawing, nil
}

// UploadDrawing stores a drawing revision file and inserts its metadata row.
// Files live under suppliers/<code>/parts/<pn>/drawings.
func UploadDrawing(db *gorm.DB, store *attachment.Store, supplierID, partID uint64,
	in DrawingInput, originalName, declaredMIME string, payload []byte) (*models.Drawing, error) {

	supplier, err := GetSupplier(db, supplierID)
	if err != nil {
		return nil, err
	}
	part, err := GetPart(db, supplierID, partID)
	if err != nil {
		return nil, err
	}

	revision := strings.TrimSpace(in.Revision)
	if revision == "" {
		return nil, types.NewValidationError("revision is required")
	}

	var effective *datatypes.Date
	if effective, err = ParseOptionalDate(in.EffectiveDate); err != nil {
		return nil, err
	}

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{attachment.FolderSuppliers, supplier.Code, "parts", part.PN, "drawings"},
		OriginalName: originalName,
		DeclaredMIME: declaredMIME,
		Payload:      payload,
		Allowed:      attachment.DrawingExtensions,
	})
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = originalName
	}

	drawing := models.Drawing{
		SupplierID:    supplierID,
		PartID:        partID,
		Revision:      revision,
		Title:         title,
		Remark:        strings.TrimSpace(in.Remark),
		EffectiveDate: effective,
		FileMeta: models.FileMeta{
			OriginalName: originalName,
			StoredName:   stored.StoredName,
			RelPath:      stored.RelPath,
			MIME:         declaredMIME,
			Size:         stored.Size,
		},
	}

	if err := db.Create(&drawing).Error; err != nil {
		// The row failed after the file was written; drop the orphan.
		store.Remove(stored.RelPath)
		return nil, err
	}
	return &drawing, nil
}

// DeleteDrawing removes the file then the metadata row
func DeleteDrawing(db *gorm.DB, store *attachment.Store, supplierID, partID, drawingID uint64) error {
	drawing, err := GetDrawing(db, supplierID, partID, drawingID)
	if err != nil {
		return err
	}

	store.Remove(drawing.RelPath)
	return db.Delete(drawing).Error
}
