package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// AuditHandler handles audit report and finding routes
type AuditHandler struct {
	DB    *gorm.DB
	Store *attachment.Store
}

// ListAuditReports handles GET /api/audits
// @Summary List audit reports
// @Description Paginated audit reports with finding statistics
// @Tags Audits
// @Produce json
// @Param q query string false "Search term"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} services.AuditReportPage
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /audits [get]
func (h *AuditHandler) ListAuditReports(c *fiber.Ctx) error {
	page, pageSize := parsePagination(c)
	result, err := services.ListAuditReports(h.DB, c.Query("q"), page, pageSize)
	if err != nil {
		return respondError(c, err, "listAuditReports")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// UploadAuditReport handles POST /api/audits
// @Summary Upload audit report
// @Description Upload a report file; ANFIA spreadsheets get findings extracted from the action plan sheet
// @Tags Audits
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Report file"
// @Param audit_type formData string false "Audit type (default ANFIA)"
// @Param supplier_name formData string true "Supplier name"
// @Param auditor formData string true "Auditor"
// @Param audit_date formData string true "Audit date (YYYY-MM-DD)"
// @Param notes formData string false "Notes"
// @Success 201 {object} models.AuditReport
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /audits [post]
func (h *AuditHandler) UploadAuditReport(c *fiber.Ctx) error {
	originalName, declaredMIME, payload, err := readUpload(c)
	if err != nil {
		return respondError(c, err, "uploadAuditReport")
	}

	in := services.AuditUploadInput{
		AuditType:    c.FormValue("audit_type"),
		SupplierName: c.FormValue("supplier_name"),
		Auditor:      c.FormValue("auditor"),
		AuditDate:    c.FormValue("audit_date"),
		Notes:        c.FormValue("notes"),
	}

	report, err := services.UploadAuditReport(h.DB, h.Store, in, originalName, declaredMIME, payload)
	if err != nil {
		return respondError(c, err, "uploadAuditReport")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetAuditReport handles GET /api/audits/:id
// @Summary Get audit report
// @Description Report with findings, optionally filtered by finding status
// @Tags Audits
// @Produce json
// @Param id path int true "Report ID"
// @Param status query string false "Finding status filter"
// @Success 200 {object} models.AuditReport
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /audits/{id} [get]
func (h *AuditHandler) GetAuditReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "getAuditReport")
	}

	report, err := services.GetAuditReport(h.DB, id, c.Query("status"))
	if err != nil {
		return respondError(c, err, "getAuditReport")
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// DownloadAuditReport handles GET /api/audits/:id/download
// @Summary Download the original report file
// @Tags Audits
// @Produce octet-stream
// @Param id path int true "Report ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /audits/{id}/download [get]
func (h *AuditHandler) DownloadAuditReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "downloadAuditReport")
	}

	report, err := services.GetAuditReport(h.DB, id, "")
	if err != nil {
		return respondError(c, err, "downloadAuditReport")
	}
	return serveFile(c, h.Store, report.FileMeta, true)
}

// DeleteAuditReport handles DELETE /api/audits/:id
// @Summary Delete audit report
// @Description Delete a report, its file and its findings
// @Tags Audits
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /audits/{id} [delete]
func (h *AuditHandler) DeleteAuditReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteAuditReport")
	}

	if err := services.DeleteAuditReport(h.DB, h.Store, id); err != nil {
		return respondError(c, err, "deleteAuditReport")
	}
	return utils.MutationSuccessResponse(c, id, 1)
}

// AddFinding handles POST /api/audits/:id/findings
// @Summary Add finding
// @Description Manually add a finding to a report (the path for PDF reports)
// @Tags Audits
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param body body services.FindingInput true "Finding fields"
// @Success 201 {object} models.AuditFinding
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /audits/{id}/findings [post]
func (h *AuditHandler) AddFinding(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "addFinding")
	}

	var in services.FindingInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	finding, err := services.AddFinding(h.DB, id, in)
	if err != nil {
		return respondError(c, err, "addFinding")
	}
	return c.Status(fiber.StatusCreated).JSON(finding)
}

// UpdateFinding handles PUT /api/audits/findings/:findingId
// @Summary Update finding
// @Description Corrective action update; closing stamps completion dates and records history
// @Tags Audits
// @Accept json
// @Produce json
// @Param findingId path int true "Finding ID"
// @Param body body services.FindingUpdateInput true "Update fields"
// @Success 200 {object} models.AuditFinding
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /audits/findings/{findingId} [put]
func (h *AuditHandler) UpdateFinding(c *fiber.Ctx) error {
	findingID, err := parseID(c, "findingId")
	if err != nil {
		return respondError(c, err, "updateFinding")
	}

	var in services.FindingUpdateInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	finding, err := services.UpdateFinding(h.DB, findingID, in)
	if err != nil {
		return respondError(c, err, "updateFinding")
	}
	return c.Status(fiber.StatusOK).JSON(finding)
}

// ListFindingProgress handles GET /api/audits/findings/:findingId/progress
// @Summary List finding progress history
// @Tags Audits
// @Produce json
// @Param findingId path int true "Finding ID"
// @Success 200 {array} models.FindingProgress
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /audits/findings/{findingId}/progress [get]
func (h *AuditHandler) ListFindingProgress(c *fiber.Ctx) error {
	findingID, err := parseID(c, "findingId")
	if err != nil {
		return respondError(c, err, "listFindingProgress")
	}

	progress, err := services.ListFindingProgress(h.DB, findingID)
	if err != nil {
		return respondError(c, err, "listFindingProgress")
	}
	return c.Status(fiber.StatusOK).JSON(progress)
}
