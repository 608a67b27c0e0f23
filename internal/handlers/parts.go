package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// PartHandler handles part and drawing routes under one supplier
type PartHandler struct {
	DB    *gorm.DB
	Store *attachment.Store
}

// ListParts handles GET /api/suppliers/:id/parts
// @Summary List parts of a supplier
// @Tags Parts
// @Produce json
// @Param id path int true "Supplier ID"
// @Param q query string false "Search term"
// @Success 200 {array} models.Part
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts [get]
func (h *PartHandler) ListParts(c *fiber.Ctx) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "listParts")
	}

	parts, err := services.ListParts(h.DB, supplierID, c.Query("q"))
	if err != nil {
		return respondError(c, err, "listParts")
	}
	return c.Status(fiber.StatusOK).JSON(parts)
}

// CreatePart handles POST /api/suppliers/:id/parts
// @Summary Create part
// @Description Create a part; the part number is unique per supplier
// @Tags Parts
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param body body services.PartInput true "Part fields"
// @Success 201 {object} models.Part
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts [post]
func (h *PartHandler) CreatePart(c *fiber.Ctx) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "createPart")
	}

	var in services.PartInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	part, err := services.CreatePart(h.DB, supplierID, in)
	if err != nil {
		return respondError(c, err, "createPart")
	}
	return c.Status(fiber.StatusCreated).JSON(part)
}

// UpdatePart handles PUT /api/suppliers/:id/parts/:partId
// @Summary Update part
// @Tags Parts
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param partId path int true "Part ID"
// @Param body body services.PartInput true "Part fields"
// @Success 200 {object} models.Part
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts/{partId} [put]
func (h *PartHandler) UpdatePart(c *fiber.Ctx) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "updatePart")
	}
	partID, err := parseID(c, "partId")
	if err != nil {
		return respondError(c, err, "updatePart")
	}

	var in services.PartInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	part, err := services.UpdatePart(h.DB, supplierID, partID, in)
	if err != nil {
		return respondError(c, err, "updatePart")
	}
	return c.Status(fiber.StatusOK).JSON(part)
}

// DeletePart handles DELETE /api/suppliers/:id/parts/:partId
// @Summary Delete part
// @Description Delete a part with its drawings and their files
// @Tags Parts
// @Produce json
// @Param id path int true "Supplier ID"
// @Param partId path int true "Part ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts/{partId} [delete]
func (h *PartHandler) DeletePart(c *fiber.Ctx) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deletePart")
	}
	partID, err := parseID(c, "partId")
	if err != nil {
		return respondError(c, err, "deletePart")
	}

	if err := services.DeletePart(h.DB, h.Store, supplierID, partID); err != nil {
		return respondError(c, err, "deletePart")
	}
	return utils.MutationSuccessResponse(c, partID, 1)
}

// ListDrawings handles GET /api/suppliers/:id/parts/:partId/drawings
// @Summary List drawings of a part
// @Tags Drawings
// @Produce json
// @Param id path int true "Supplier ID"
// @Param partId path int true "Part ID"
// @Success 200 {array} models.Drawing
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts/{partId}/drawings [get]
func (h *PartHandler) ListDrawings(c *fiber.Ctx) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "listDrawings")
	}
	partID, err := parseID(c, "partId")
	if err != nil {
		return respondError(c, err, "listDrawings")
	}

	drawings, err := services.ListDrawings(h.DB, supplierID, partID)
	if err != nil {
		return respondError(c, err, "listDrawings")
	}
	return c.Status(fiber.StatusOK).JSON(drawings)
}

// UploadDrawing handles POST /api/suppliers/:id/parts/:partId/drawings
// @Summary Upload drawing
// @Description Upload a drawing revision for a part
// @Tags Drawings
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Supplier ID"
// @Param partId path int true "Part ID"
// @Param file formData file true "Drawing file"
// @Param revision formData string true "Revision"
// @Param title formData string false "Title"
// @Param remark formData string false "Remark"
// @Param effective_date formData string false "Effective date (YYYY-MM-DD)"
// @Success 201 {object} models.Drawing
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts/{partId}/drawings [post]
func (h *PartHandler) UploadDrawing(c *fiber.Ctx) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "uploadDrawing")
	}
	partID, err := parseID(c, "partId")
	if err != nil {
		return respondError(c, err, "uploadDrawing")
	}

	originalName, declaredMIME, payload, err := readUpload(c)
	if err != nil {
		return respondError(c, err, "uploadDrawing")
	}

	in := services.DrawingInput{
		Revision:      c.FormValue("revision"),
		Title:         c.FormValue("title"),
		Remark:        c.FormValue("remark"),
		EffectiveDate: c.FormValue("effective_date"),
	}

	drawing, err := services.UploadDrawing(h.DB, h.Store, supplierID, partID, in, originalName, declaredMIME, payload)
	if err != nil {
		return respondError(c, err, "uploadDrawing")
	}
	return c.Status(fiber.StatusCreated).JSON(drawing)
}

// ViewDrawing handles GET /api/suppliers/:id/parts/:partId/drawings/:drawingId/view
// @Summary Preview drawing
// @Tags Drawings
// @Produce octet-stream
// @Param id path int true "Supplier ID"
// @Param partId path int true "Part ID"
// @Param drawingId path int true "Drawing ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts/{partId}/drawings/{drawingId}/view [get]
func (h *PartHandler) ViewDrawing(c *fiber.Ctx) error {
	return h.sendDrawing(c, false)
}

// DownloadDrawing handles GET /api/suppliers/:id/parts/:partId/drawings/:drawingId/download
// @Summary Download drawing
// @Tags Drawings
// @Produce octet-stream
// @Param id path int true "Supplier ID"
// @Param partId path int true "Part ID"
// @Param drawingId path int true "Drawing ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts/{partId}/drawings/{drawingId}/download [get]
func (h *PartHandler) DownloadDrawing(c *fiber.Ctx) error {
	return h.sendDrawing(c, true)
}

func (h *PartHandler) sendDrawing(c *fiber.Ctx, asAttachment bool) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "sendDrawing")
	}
	partID, err := parseID(c, "partId")
	if err != nil {
		return respondError(c, err, "sendDrawing")
	}
	drawingID, err := parseID(c, "drawingId")
	if err != nil {
		return respondError(c, err, "sendDrawing")
	}

	drawing, err := services.GetDrawing(h.DB, supplierID, partID, drawingID)
	if err != nil {
		return respondError(c, err, "sendDrawing")
	}
	return serveFile(c, h.Store, drawing.FileMeta, asAttachment)
}

// DeleteDrawing handles DELETE /api/suppliers/:id/parts/:partId/drawings/:drawingId
// @Summary Delete drawing
// @Tags Drawings
// @Produce json
// @Param id path int true "Supplier ID"
// @Param partId path int true "Part ID"
// @Param drawingId path int true "Drawing ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id}/parts/{partId}/drawings/{drawingId} [delete]
func (h *PartHandler) DeleteDrawing(c *fiber.Ctx) error {
	supplierID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteDrawing")
	}
	partID, err := parseID(c, "partId")
	if err != nil {
		return respondError(c, err, "deleteDrawing")
	}
	drawingID, err := parseID(c, "drawingId")
	if err != nil {
		return respondError(c, err, "deleteDrawing")
	}

	if err := services.DeleteDrawing(h.DB, h.Store, supplierID, partID, drawingID); err != nil {
		return respondError(c, err, "deleteDrawing")
	}
	return utils.MutationSuccessResponse(c, drawingID, 1)
}
