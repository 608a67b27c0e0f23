package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// TaskHandler handles follow-up task routes
type TaskHandler struct {
	DB    *gorm.DB
	Store *attachment.Store
}

// ListTaskBoard handles GET /api/tasks
// @Summary List the task board
// @Description Tasks grouped by status with urgency statistics
// @Tags Tasks
// @Produce json
// @Param priority query string false "Priority filter"
// @Param category query string false "Category filter"
// @Success 200 {object} services.TaskBoard
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tasks [get]
func (h *TaskHandler) ListTaskBoard(c *fiber.Ctx) error {
	board, err := services.ListTaskBoard(h.DB, c.Query("priority"), c.Query("category"))
	if err != nil {
		return respondError(c, err, "listTaskBoard")
	}
	return c.Status(fiber.StatusOK).JSON(board)
}

// GetTask handles GET /api/tasks/:id
// @Summary Get task
// @Description Task with its update history and attachments
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} models.Task
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "getTask")
	}

	task, err := services.GetTask(h.DB, id)
	if err != nil {
		return respondError(c, err, "getTask")
	}
	return c.Status(fiber.StatusOK).JSON(task)
}

// CreateTask handles POST /api/tasks
// @Summary Create task
// @Description Create a task; the task number is generated per calendar year
// @Tags Tasks
// @Accept json
// @Produce json
// @Param body body services.TaskInput true "Task fields"
// @Success 201 {object} models.Task
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var in services.TaskInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	task, err := services.CreateTask(h.DB, in)
	if err != nil {
		return respondError(c, err, "createTask")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask handles PUT /api/tasks/:id
// @Summary Update task
// @Description Update a task; status and progress changes record history rows
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param body body services.TaskUpdateInput true "Update fields"
// @Success 200 {object} models.Task
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "updateTask")
	}

	var in services.TaskUpdateInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	task, err := services.UpdateTask(h.DB, id, in)
	if err != nil {
		return respondError(c, err, "updateTask")
	}
	return c.Status(fiber.StatusOK).JSON(task)
}

// CompleteTask handles POST /api/tasks/:id/complete
// @Summary Complete task
// @Description Mark a task completed, setting progress to 100
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} models.Task
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "completeTask")
	}

	var body struct {
		UpdatedBy string `json:"updated_by"`
	}
	// A body is optional here
	_ = c.BodyParser(&body)

	task, err := services.CompleteTask(h.DB, id, body.UpdatedBy)
	if err != nil {
		return respondError(c, err, "completeTask")
	}
	return c.Status(fiber.StatusOK).JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:id
// @Summary Delete task
// @Description Delete a task with its history, attachments and their files
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteTask")
	}

	if err := services.DeleteTask(h.DB, h.Store, id); err != nil {
		return respondError(c, err, "deleteTask")
	}
	return utils.MutationSuccessResponse(c, id, 1)
}

// UploadTaskAttachment handles POST /api/tasks/:id/attachments
// @Summary Upload task attachment
// @Tags Tasks
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Task ID"
// @Param file formData file true "Attachment"
// @Param doc_type formData string false "Document type"
// @Param title formData string false "Title"
// @Param remark formData string false "Remark"
// @Success 201 {object} models.TaskAttachment
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /tasks/{id}/attachments [post]
func (h *TaskHandler) UploadTaskAttachment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "uploadTaskAttachment")
	}

	originalName, declaredMIME, payload, err := readUpload(c)
	if err != nil {
		return respondError(c, err, "uploadTaskAttachment")
	}

	att, err := services.UploadTaskAttachment(h.DB, h.Store, id,
		c.FormValue("doc_type"), c.FormValue("title"), c.FormValue("remark"),
		originalName, declaredMIME, payload)
	if err != nil {
		return respondError(c, err, "uploadTaskAttachment")
	}
	return c.Status(fiber.StatusCreated).JSON(att)
}

// ViewTaskAttachment handles GET /api/tasks/:id/attachments/:attId/view
// @Summary Preview task attachment
// @Tags Tasks
// @Produce octet-stream
// @Param id path int true "Task ID"
// @Param attId path int true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id}/attachments/{attId}/view [get]
func (h *TaskHandler) ViewTaskAttachment(c *fiber.Ctx) error {
	return h.sendTaskAttachment(c, false)
}

// DownloadTaskAttachment handles GET /api/tasks/:id/attachments/:attId/download
// @Summary Download task attachment
// @Tags Tasks
// @Produce octet-stream
// @Param id path int true "Task ID"
// @Param attId path int true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id}/attachments/{attId}/download [get]
func (h *TaskHandler) DownloadTaskAttachment(c *fiber.Ctx) error {
	return h.sendTaskAttachment(c, true)
}

func (h *TaskHandler) sendTaskAttachment(c *fiber.Ctx, asAttachment bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "sendTaskAttachment")
	}
	attID, err := parseID(c, "attId")
	if err != nil {
		return respondError(c, err, "sendTaskAttachment")
	}

	att, err := services.GetTaskAttachment(h.DB, id, attID)
	if err != nil {
		return respondError(c, err, "sendTaskAttachment")
	}
	return serveFile(c, h.Store, att.FileMeta, asAttachment)
}

// DeleteTaskAttachment handles DELETE /api/tasks/:id/attachments/:attId
// @Summary Delete task attachment
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Param attId path int true "Attachment ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id}/attachments/{attId} [delete]
func (h *TaskHandler) DeleteTaskAttachment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteTaskAttachment")
	}
	attID, err := parseID(c, "attId")
	if err != nil {
		return respondError(c, err, "deleteTaskAttachment")
	}

	if err := services.DeleteTaskAttachment(h.DB, h.Store, id, attID); err != nil {
		return respondError(c, err, "deleteTaskAttachment")
	}
	return utils.MutationSuccessResponse(c, attID, 1)
}
