package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// TripHandler handles business trip routes
type TripHandler struct {
	DB    *gorm.DB
	Store *attachment.Store
}

// ListTrips handles GET /api/trips
// @Summary List business trips
// @Description Trips matching q with status statistics
// @Tags Trips
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {object} services.TripList
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /trips [get]
func (h *TripHandler) ListTrips(c *fiber.Ctx) error {
	result, err := services.ListTrips(h.DB, c.Query("q"))
	if err != nil {
		return respondError(c, err, "listTrips")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetTrip handles GET /api/trips/:id
// @Summary Get business trip
// @Tags Trips
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} models.BusinessTrip
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trips/{id} [get]
func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "getTrip")
	}

	trip, err := services.GetTrip(h.DB, id)
	if err != nil {
		return respondError(c, err, "getTrip")
	}
	return c.Status(fiber.StatusOK).JSON(trip)
}

// CreateTrip handles POST /api/trips
// @Summary Create business trip
// @Description Create a trip; the trip number is generated per calendar day
// @Tags Trips
// @Accept json
// @Produce json
// @Param body body services.TripInput true "Trip fields"
// @Success 201 {object} models.BusinessTrip
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /trips [post]
func (h *TripHandler) CreateTrip(c *fiber.Ctx) error {
	var in services.TripInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	trip, err := services.CreateTrip(h.DB, in)
	if err != nil {
		return respondError(c, err, "createTrip")
	}
	return c.Status(fiber.StatusCreated).JSON(trip)
}

// UpdateTrip handles PUT /api/trips/:id
// @Summary Update business trip
// @Tags Trips
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param body body services.TripInput true "Trip fields"
// @Success 200 {object} models.BusinessTrip
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trips/{id} [put]
func (h *TripHandler) UpdateTrip(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "updateTrip")
	}

	var in services.TripInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	trip, err := services.UpdateTrip(h.DB, id, in)
	if err != nil {
		return respondError(c, err, "updateTrip")
	}
	return c.Status(fiber.StatusOK).JSON(trip)
}

// DeleteTrip handles DELETE /api/trips/:id
// @Summary Delete business trip
// @Description Delete a trip, its documents and their files
// @Tags Trips
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trips/{id} [delete]
func (h *TripHandler) DeleteTrip(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteTrip")
	}

	if err := services.DeleteTrip(h.DB, h.Store, id); err != nil {
		return respondError(c, err, "deleteTrip")
	}
	return utils.MutationSuccessResponse(c, id, 1)
}

// UploadTripDocument handles POST /api/trips/:id/documents
// @Summary Upload trip document
// @Tags Trips
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Trip ID"
// @Param file formData file true "Document"
// @Param doc_type formData string false "Document type"
// @Param title formData string false "Title"
// @Param remark formData string false "Remark"
// @Success 201 {object} models.TripDocument
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /trips/{id}/documents [post]
func (h *TripHandler) UploadTripDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "uploadTripDocument")
	}

	originalName, declaredMIME, payload, err := readUpload(c)
	if err != nil {
		return respondError(c, err, "uploadTripDocument")
	}

	doc, err := services.UploadTripDocument(h.DB, h.Store, id,
		c.FormValue("doc_type"), c.FormValue("title"), c.FormValue("remark"),
		originalName, declaredMIME, payload)
	if err != nil {
		return respondError(c, err, "uploadTripDocument")
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// ViewTripDocument handles GET /api/trips/:id/documents/:docId/view
// @Summary Preview trip document
// @Tags Trips
// @Produce octet-stream
// @Param id path int true "Trip ID"
// @Param docId path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trips/{id}/documents/{docId}/view [get]
func (h *TripHandler) ViewTripDocument(c *fiber.Ctx) error {
	return h.sendTripDocument(c, false)
}

// DownloadTripDocument handles GET /api/trips/:id/documents/:docId/download
// @Summary Download trip document
// @Tags Trips
// @Produce octet-stream
// @Param id path int true "Trip ID"
// @Param docId path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trips/{id}/documents/{docId}/download [get]
func (h *TripHandler) DownloadTripDocument(c *fiber.Ctx) error {
	return h.sendTripDocument(c, true)
}

func (h *TripHandler) sendTripDocument(c *fiber.Ctx, asAttachment bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "sendTripDocument")
	}
	docID, err := parseID(c, "docId")
	if err != nil {
		return respondError(c, err, "sendTripDocument")
	}

	doc, err := services.GetTripDocument(h.DB, id, docID)
	if err != nil {
		return respondError(c, err, "sendTripDocument")
	}
	return serveFile(c, h.Store, doc.FileMeta, asAttachment)
}

// DeleteTripDocument handles DELETE /api/trips/:id/documents/:docId
// @Summary Delete trip document
// @Tags Trips
// @Produce json
// @Param id path int true "Trip ID"
// @Param docId path int true "Document ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /trips/{id}/documents/{docId} [delete]
func (h *TripHandler) DeleteTripDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteTripDocument")
	}
	docID, err := parseID(c, "docId")
	if err != nil {
		return respondError(c, err, "deleteTripDocument")
	}

	if err := services.DeleteTripDocument(h.DB, h.Store, id, docID); err != nil {
		return respondError(c, err, "deleteTripDocument")
	}
	return utils.MutationSuccessResponse(c, docID, 1)
}
