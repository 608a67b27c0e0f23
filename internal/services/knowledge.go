package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/types"
)

// KnowledgeProcesses is the manufacturing process vocabulary
var KnowledgeProcesses = []string{
	"welding", "coating", "smt", "molding", "stamping",
	"assembly", "testing", "packaging", "other",
}

func isKnowledgeProcess(p string) bool {
	for _, v := range KnowledgeProcesses {
		if v == p {
			return true
		}
	}
	return false
}

// relatedItemsLimit caps the related knowledge shown on a detail view
const relatedItemsLimit = 6

// KnowledgeInput carries the writable knowledge item fields
type KnowledgeInput struct {
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	Process      string            `json:"process"`
	CaseType     string            `json:"case_type"`
	Priority     string            `json:"priority"`
	SupplierName string            `json:"supplier_name"`
	PartNumber   string            `json:"part_number"`
	Tags         types.FlexStrings `json:"tags"`
}

// ProcessCount is the per-process item count for the knowledge sidebar
type ProcessCount struct {
	Process string `json:"process"`
	Count   int64  `json:"count"`
}

// KnowledgeList is the listing of knowledge items with process counts
type KnowledgeList struct {
	Items     []models.KnowledgeItem `json:"items"`
	Total     int64                  `json:"total"`
	Processes []ProcessCount         `json:"processes"`
}

// KnowledgeDetail is one item with its related entries from the same process
type KnowledgeDetail struct {
	Item    models.KnowledgeItem   `json:"item"`
	Related []models.KnowledgeItem `json:"related"`
}

// ListKnowledgeItems returns items filtered by process and matched by q
// across title, content, tags, supplier and part number, newest first.
func ListKnowledgeItems(db *gorm.DB, q, process string) (*KnowledgeList, error) {
	query := db.Model(&models.KnowledgeItem{})

	if process = strings.TrimSpace(process); process != "" && isKnowledgeProcess(process) {
		query = query.Where("process = ?", process)
	}
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where(
			"title LIKE ? OR content LIKE ? OR tags LIKE ? OR supplier_name LIKE ? OR part_number LIKE ?",
			like(q), like(q), like(q), like(q), like(q),
		)
	}

	var items []models.KnowledgeItem
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := db.Model(&models.KnowledgeItem{}).Count(&total).Error; err != nil {
		return nil, err
	}

	counts := make([]ProcessCount, 0, len(KnowledgeProcesses))
	for _, p := range KnowledgeProcesses {
		var n int64
		if err := db.Model(&models.KnowledgeItem{}).Where("process = ?", p).Count(&n).Error; err != nil {
			return nil, err
		}
		counts = append(counts, ProcessCount{Process: p, Count: n})
	}

	return &KnowledgeList{Items: items, Total: total, Processes: counts}, nil
}

// GetKnowledgeItem retrieves one item with up to six related entries sharing
// its process.
func GetKnowledgeItem(db *gorm.DB, id uint64) (*KnowledgeDetail, error) {
	var item models.KnowledgeItem
	if err := db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("knowledge item %d not found", id)
		}
		return nil, err
	}

	var related []models.KnowledgeItem
	if err := db.Where("process = ? AND id <> ?", item.Process, item.ID).
		Order("created_at DESC").Limit(relatedItemsLimit).
		Find(&related).Error; err != nil {
		return nil, err
	}

	return &KnowledgeDetail{Item: item, Related: related}, nil
}

// CreateKnowledgeItem inserts a knowledge entry; the process must come from
// the vocabulary.
func CreateKnowledgeItem(db *gorm.DB, in KnowledgeInput) (*models.KnowledgeItem, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	process := strings.TrimSpace(in.Process)
	if title == "" {
		return nil, types.NewValidationError("title is required")
	}
	if content == "" {
		return nil, types.NewValidationError("content is required")
	}
	if !isKnowledgeProcess(process) {
		return nil, types.NewValidationError("invalid process: %s", process)
	}

	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = "normal"
	}

	tags, err := models.TagsJSON(in.Tags.Slice())
	if err != nil {
		return nil, err
	}

	item := models.KnowledgeItem{
		Title:        title,
		Content:      content,
		Process:      process,
		CaseType:     strings.TrimSpace(in.CaseType),
		Priority:     priority,
		SupplierName: strings.TrimSpace(in.SupplierName),
		PartNumber:   strings.TrimSpace(in.PartNumber),
		Tags:         tags,
	}

	if err := db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateKnowledgeItem modifies a knowledge entry under the same validation
// rules as creation.
func UpdateKnowledgeItem(db *gorm.DB, id uint64, in KnowledgeInput) (*models.KnowledgeItem, error) {
	var item models.KnowledgeItem
	if err := db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("knowledge item %d not found", id)
		}
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	process := strings.TrimSpace(in.Process)
	if title == "" || content == "" {
		return nil, types.NewValidationError("title and content are required")
	}
	if !isKnowledgeProcess(process) {
		return nil, types.NewValidationError("invalid process: %s", process)
	}

	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = "normal"
	}

	tags, err := models.TagsJSON(in.Tags.Slice())
	if err != nil {
		return nil, err
	}

	item.Title = title
	item.Content = content
	item.Process = process
	item.CaseType = strings.TrimSpace(in.CaseType)
	item.Priority = priority
	item.SupplierName = strings.TrimSpace(in.SupplierName)
	item.PartNumber = strings.TrimSpace(in.PartNumber)
	item.Tags = tags

	if err := db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteKnowledgeItem removes a knowledge entry
func DeleteKnowledgeItem(db *gorm.DB, id uint64) error {
	res := db.Delete(&models.KnowledgeItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("knowledge item %d not found", id)
	}
	return nil
}
