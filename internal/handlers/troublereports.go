package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// TroubleReportHandler handles trouble report routes
type TroubleReportHandler struct {
	DB    *gorm.DB
	Store *attachment.Store
}

// ListTroubleReports handles GET /api/trouble-reports
// @Summary List trouble reports
// @Description Paginated search across TR fields including 8D status keywords
// @Tags TroubleReports
// @Produce json
// @Param q query string false "Search term"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} services.TroubleReportPage
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /trouble-reports [get]
func (h *TroubleReportHandler) ListTroubleReports(c *fiber.Ctx) error {
	page, pageSize := parsePagination(c)
	result, err := services.ListTroubleReports(h.DB, c.Query("q"), page, pageSize)
	if err != nil {
		return respondError(c, err, "listTroubleReports")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetTroubleReport handles GET /api/trouble-reports/:id
// @Summary Get trouble report
// @Tags TroubleReports
// @Produce json
// @Param id path int true "TR ID"
// @Success 200 {object} models.TroubleReport
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trouble-reports/{id} [get]
func (h *TroubleReportHandler) GetTroubleReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "getTroubleReport")
	}

	tr, err := services.GetTroubleReport(h.DB, id)
	if err != nil {
		return respondError(c, err, "getTroubleReport")
	}
	return c.Status(fiber.StatusOK).JSON(tr)
}

// CreateTroubleReport handles POST /api/trouble-reports
// @Summary Create trouble report
// @Description Create a TR with a user-supplied globally unique number
// @Tags TroubleReports
// @Accept json
// @Produce json
// @Param body body services.TroubleReportInput true "TR fields"
// @Success 201 {object} models.TroubleReport
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /trouble-reports [post]
func (h *TroubleReportHandler) CreateTroubleReport(c *fiber.Ctx) error {
	var in services.TroubleReportInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	tr, err := services.CreateTroubleReport(h.DB, in)
	if err != nil {
		return respondError(c, err, "createTroubleReport")
	}
	return c.Status(fiber.StatusCreated).JSON(tr)
}

// UpdateTroubleReport handles PUT /api/trouble-reports/:id
// @Summary Update trouble report
// @Tags TroubleReports
// @Accept json
// @Produce json
// @Param id path int true "TR ID"
// @Param body body services.TroubleReportInput true "TR fields"
// @Success 200 {object} models.TroubleReport
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /trouble-reports/{id} [put]
func (h *TroubleReportHandler) UpdateTroubleReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "updateTroubleReport")
	}

	var in services.TroubleReportInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	tr, err := services.UpdateTroubleReport(h.DB, id, in)
	if err != nil {
		return respondError(c, err, "updateTroubleReport")
	}
	return c.Status(fiber.StatusOK).JSON(tr)
}

// DeleteTroubleReport handles DELETE /api/trouble-reports/:id
// @Summary Delete trouble report
// @Description Delete a TR with its documents and their files
// @Tags TroubleReports
// @Produce json
// @Param id path int true "TR ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trouble-reports/{id} [delete]
func (h *TroubleReportHandler) DeleteTroubleReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteTroubleReport")
	}

	if err := services.DeleteTroubleReport(h.DB, h.Store, id); err != nil {
		return respondError(c, err, "deleteTroubleReport")
	}
	return utils.MutationSuccessResponse(c, id, 1)
}

// UploadTRDocument handles POST /api/trouble-reports/:id/documents
// @Summary Upload TR document
// @Tags TroubleReports
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "TR ID"
// @Param file formData file true "Document"
// @Param doc_type formData string false "Document type"
// @Param title formData string false "Title"
// @Param remark formData string false "Remark"
// @Success 201 {object} models.TRDocument
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /trouble-reports/{id}/documents [post]
func (h *TroubleReportHandler) UploadTRDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "uploadTRDocument")
	}

	originalName, declaredMIME, payload, err := readUpload(c)
	if err != nil {
		return respondError(c, err, "uploadTRDocument")
	}

	doc, err := services.UploadTRDocument(h.DB, h.Store, id,
		c.FormValue("doc_type"), c.FormValue("title"), c.FormValue("remark"),
		originalName, declaredMIME, payload)
	if err != nil {
		return respondError(c, err, "uploadTRDocument")
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// ViewTRDocument handles GET /api/trouble-reports/:id/documents/:docId/view
// @Summary Preview TR document
// @Tags TroubleReports
// @Produce octet-stream
// @Param id path int true "TR ID"
// @Param docId path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trouble-reports/{id}/documents/{docId}/view [get]
func (h *TroubleReportHandler) ViewTRDocument(c *fiber.Ctx) error {
	return h.sendTRDocument(c, false)
}

// DownloadTRDocument handles GET /api/trouble-reports/:id/documents/:docId/download
// @Summary Download TR document
// @Tags TroubleReports
// @Produce octet-stream
// @Param id path int true "TR ID"
// @Param docId path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trouble-reports/{id}/documents/{docId}/download [get]
func (h *TroubleReportHandler) DownloadTRDocument(c *fiber.Ctx) error {
	return h.sendTRDocument(c, true)
}

func (h *TroubleReportHandler) sendTRDocument(c *fiber.Ctx, asAttachment bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "sendTRDocument")
	}
	docID, err := parseID(c, "docId")
	if err != nil {
		return respondError(c, err, "sendTRDocument")
	}

	doc, err := services.GetTRDocument(h.DB, id, docID)
	if err != nil {
		return respondError(c, err, "sendTRDocument")
	}
	return serveFile(c, h.Store, doc.FileMeta, asAttachment)
}

// DeleteTRDocument handles DELETE /api/trouble-reports/:id/documents/:docId
// @Summary Delete TR document
// @Tags TroubleReports
// @Produce json
// @Param id path int true "TR ID"
// @Param docId path int true "Document ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trouble-reports/{id}/documents/{docId} [delete]
func (h *TroubleReportHandler) DeleteTRDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteTRDocument")
	}
	docID, err := parseID(c, "docId")
	if err != nil {
		return respondError(c, err, "deleteTRDocument")
	}

	if err := services.DeleteTRDocument(h.DB, h.Store, id, docID); err != nil {
		return respondError(c, err, "deleteTRDocument")
	}
	return utils.MutationSuccessResponse(c, docID, 1)
}
