// tasks.go
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

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/sequence"
	"github.com/sqmworks/supplier-portal/internal/types"
)

var allowedTaskStatus = map[string]struct{}{
	models.TaskPending:    {},
	models.TaskInProgress: {},
	models.TaskOnHold:     {},
	models.TaskCompleted:  {},
}

// TaskInput carries the writable task fields
type TaskInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Source          string `json:"source"`
	SourceReference string `json:"source_reference"`
	Requester       string `json:"requester"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	StartDate       string `json:"start_date"`
	DueDate         string `json:"due_date"`
	RelatedSupplier string `json:"related_supplier"`
	RelatedTRNo     string `json:"related_tr_no"`
	RelatedAuditNo  string `json:"related_audit_no"`
	RelatedTripNo   string `json:"related_trip_no"`
	Notes           string `json:"notes"`
}

// TaskUpdateInput carries the fields a task update can change
type TaskUpdateInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    string           `json:"priority"`
	Status      string           `json:"status"`
	Progress    types.FlexUint64 `json:"progress"`
	DueDate     string           `json:"due_date"`
	Notes       string           `json:"notes"`
	Comment     string           `json:"comment"`
	UpdatedBy   string           `json:"updated_by"`
}

// TaskStats summarizes the board workload
type TaskStats struct {
	Total      int64 `json:"total"`
	Urgent     int64 `json:"urgent"`
	InProgress int64 `json:"in_progress"`
	DueToday   int64 `json:"due_today"`
	Overdue    int64 `json:"overdue"`
}

// TaskBoard groups tasks by status for the kanban view
type TaskBoard struct {
	Pending    []models.Task `json:"pending"`
	InProgress []models.Task `json:"in_progress"`
	OnHold     []models.Task `json:"on_hold"`
	Completed  []models.Task `json:"completed"`
	Stats      TaskStats     `json:"stats"`
}

// ListTaskBoard returns all tasks grouped by status, filtered by priority and
// category, with the board statistics.
func ListTaskBoard(db *gorm.DB, priority, category string) (*TaskBoard, error) {
	query := db.Model(&models.Task{})
	if priority = strings.TrimSpace(priority); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", category)
	}

	var tasks []models.Task
	if err := query.Order("due_date ASC, priority DESC, created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	board := &TaskBoard{
		Pending:    []models.Task{},
		InProgress: []models.Task{},
		OnHold:     []models.Task{},
		Completed:  []models.Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskPending:
			board.Pending = append(board.Pending, t)
		case models.TaskInProgress:
			board.InProgress = append(board.InProgress, t)
		case models.TaskOnHold:
			board.OnHold = append(board.OnHold, t)
		case models.TaskCompleted:
			board.Completed = append(board.Completed, t)
		}
	}

	stats, err := taskStats(db)
	if err != nil {
		return nil, err
	}
	board.Stats = *stats

	return board, nil
}

func taskStats(db *gorm.DB) (*TaskStats, error) {
	var stats TaskStats
	active := []string{models.TaskPending, models.TaskInProgress}
	today := datatypes.Date(time.Now())

	if err := db.Model(&models.Task{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("priority = ? AND status IN ?", "urgent", active).
		Count(&stats.Urgent).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Where("status = ?", models.TaskInProgress).
		Count(&stats.InProgress).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("due_date = ? AND status IN ?", today, active).
		Count(&stats.DueToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("due_date < ? AND status IN ?", today, active).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetTask retrieves one task with its update history and attachments
func GetTask(db *gorm.DB, id uint64) (*models.Task, error) {
	var task models.Task
	err := db.Preload("Updates", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Preload("Attachments").First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("task %d not found", id)
		}
		return nil, err
	}
	return &task, nil
}

// CreateTask generates the task number and inserts the record
func CreateTask(db *gorm.DB, in TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	source := strings.TrimSpace(in.Source)
	if title == "" {
		return nil, types.NewValidationError("title is required")
	}
	if source == "" {
		return nil, types.NewValidationError("source is required")
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return nil, types.NewValidationError("due_date is required")
	}

	dueDate, err := ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	startDate, err := ParseOptionalDate(in.StartDate)
	if err != nil {
		return nil, err
	}

	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = "medium"
	}

	taskNo, err := sequence.Next(db, sequence.TaskNumber, time.Now())
	if err != nil {
		return nil, err
	}

	task := models.Task{
		TaskNo:          taskNo,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Source:          source,
		SourceReference: strings.TrimSpace(in.SourceReference),
		Requester:       strings.TrimSpace(in.Requester),
		Category:        strings.TrimSpace(in.Category),
		Priority:        priority,
		Status:          models.TaskPending,
		StartDate:       startDate,
		DueDate:         dueDate,
		RelatedSupplier: strings.TrimSpace(in.RelatedSupplier),
		RelatedTRNo:     strings.TrimSpace(in.RelatedTRNo),
		RelatedAuditNo:  strings.TrimSpace(in.RelatedAuditNo),
		RelatedTripNo:   strings.TrimSpace(in.RelatedTripNo),
		Notes:           strings.TrimSpace(in.Notes),
	}

	if err := db.Create(&task).Error; err != nil {
		return nil, translateDBError(err, "task number %s already exists", taskNo)
	}
	return &task, nil
}

// UpdateTask applies a task update. A status or progress change, or a
// non-empty comment, records a history row. Completing a task stamps the
// completion date and forces progress to 100.
func UpdateTask(db *gorm.DB, id uint64, in TaskUpdateInput) (*models.Task, error) {
	task, err := GetTask(db, id)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	oldProgress := task.Progress

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, types.NewValidationError("title is required")
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.TaskPending
	}
	if _, ok := allowedTaskStatus[status]; !ok {
		return nil, types.NewValidationError("invalid task status: %s", status)
	}

	progress := in.Progress.Int()
	if progress < 0 || progress > 100 {
		return nil, types.NewValidationError("progress must be between 0 and 100")
	}

	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = "medium"
	}

	task.Title = title
	task.Description = strings.TrimSpace(in.Description)
	task.Priority = priority
	task.Status = status
	task.Progress = progress
	task.Notes = strings.TrimSpace(in.Notes)

	if dueDate, err := ParseOptionalDate(in.DueDate); err == nil && dueDate != nil {
		task.DueDate = *dueDate
	}

	if task.Status == models.TaskCompleted && oldStatus != models.TaskCompleted {
		today := datatypes.Date(time.Now())
		task.CompletedDate = &today
		task.Progress = 100
	}

	comment := strings.TrimSpace(in.Comment)
	updatedBy := strings.TrimSpace(in.UpdatedBy)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if comment != "" || oldStatus != task.Status || oldProgress != task.Progress {
			updateType := "progress_update"
			if oldStatus != task.Status {
				updateType = "status_change"
			}
			update := models.TaskUpdate{
				TaskID:      task.ID,
				UpdateType:  updateType,
				OldStatus:   oldStatus,
				NewStatus:   task.Status,
				OldProgress: oldProgress,
				NewProgress: task.Progress,
				Content:     comment,
				UpdatedBy:   updatedBy,
			}
			return tx.Create(&update).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask marks a task completed in one step
func CompleteTask(db *gorm.DB, id uint64, updatedBy string) (*models.Task, error) {
	task, err := GetTask(db, id)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	oldProgress := task.Progress
	today := datatypes.Date(time.Now())

	task.Status = models.TaskCompleted
	task.CompletedDate = &today
	task.Progress = 100

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		update := models.TaskUpdate{
			TaskID:      task.ID,
			UpdateType:  "status_change",
			OldStatus:   oldStatus,
			NewStatus:   models.TaskCompleted,
			OldProgress: oldProgress,
			NewProgress: 100,
			Content:     "Task marked as completed",
			UpdatedBy:   strings.TrimSpace(updatedBy),
		}
		return tx.Create(&update).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task, its history, attachments and their files
func DeleteTask(db *gorm.DB, store *attachment.Store, id uint64) error {
	task, err := GetTask(db, id)
	if err != nil {
		return err
	}

	for _, att := range task.Attachments {
		store.Remove(att.RelPath)
	}

	return db.Select("Updates", "Attachments").Delete(task).Error
}

// UploadTaskAttachment stores a file under task_docs/<task_no> and records it
func UploadTaskAttachment(db *gorm.DB, store *attachment.Store, taskID uint64,
	docType, title, remark, originalName, declaredMIME string, payload []byte) (*models.TaskAttachment, error) {

	task, err := GetTask(db, taskID)
	if err != nil {
		return nil, err
	}

	docType = strings.TrimSpace(docType)
	if docType == "" {
		docType = "other"
	}

	stored, err := store.Save(attachment.Upload{
		Dir:          []string{attachment.FolderTaskDocs, task.TaskNo},
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

	att := models.TaskAttachment{
		TaskID:  taskID,
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

	if err := db.Create(&att).Error; err != nil {
		store.Remove(stored.RelPath)
		return nil, err
	}
	return &att, nil
}

// GetTaskAttachment retrieves one attachment through its owning task
func GetTaskAttachment(db *gorm.DB, taskID, attID uint64) (*models.TaskAttachment, error) {
	var count int64
	if err := db.Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, types.NewNotFoundError("task %d not found", taskID)
	}

	var att models.TaskAttachment
	err := db.Where("id = ? AND task_id = ?", attID, taskID).First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("attachment %d not found", attID)
		}
		return nil, err
	}
	return &att, nil
}

// DeleteTaskAttachment removes the file then the metadata row
func DeleteTaskAttachment(db *gorm.DB, store *attachment.Store, taskID, attID uint64) error {
	att, err := GetTaskAttachment(db, taskID, attID)
	if err != nil {
		return err
	}

	store.Remove(att.RelPath)
	return db.Delete(att).Error
}
