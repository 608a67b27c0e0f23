package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// KnowledgeHandler handles knowledge base routes
type KnowledgeHandler struct {
	DB *gorm.DB
}

// ListKnowledgeItems handles GET /api/knowledge
// @Summary List knowledge items
// @Description Items filtered by process and matched by q, with per-process counts
// @Tags Knowledge
// @Produce json
// @Param q query string false "Search term"
// @Param process query string false "Process filter"
// @Success 200 {object} services.KnowledgeList
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /knowledge [get]
func (h *KnowledgeHandler) ListKnowledgeItems(c *fiber.Ctx) error {
	result, err := services.ListKnowledgeItems(h.DB, c.Query("q"), c.Query("process"))
	if err != nil {
		return respondError(c, err, "listKnowledgeItems")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetKnowledgeItem handles GET /api/knowledge/:id
// @Summary Get knowledge item
// @Description Item with up to six related entries from the same process
// @Tags Knowledge
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} services.KnowledgeDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /knowledge/{id} [get]
func (h *KnowledgeHandler) GetKnowledgeItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "getKnowledgeItem")
	}

	detail, err := services.GetKnowledgeItem(h.DB, id)
	if err != nil {
		return respondError(c, err, "getKnowledgeItem")
	}
	return c.Status(fiber.StatusOK).JSON(detail)
}

// CreateKnowledgeItem handles POST /api/knowledge
// @Summary Create knowledge item
// @Description Create an item; an unknown process is rejected
// @Tags Knowledge
// @Accept json
// @Produce json
// @Param body body services.KnowledgeInput true "Item fields"
// @Success 201 {object} models.KnowledgeItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /knowledge [post]
func (h *KnowledgeHandler) CreateKnowledgeItem(c *fiber.Ctx) error {
	var in services.KnowledgeInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	item, err := services.CreateKnowledgeItem(h.DB, in)
	if err != nil {
		return respondError(c, err, "createKnowledgeItem")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateKnowledgeItem handles PUT /api/knowledge/:id
// @Summary Update knowledge item
// @Tags Knowledge
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param body body services.KnowledgeInput true "Item fields"
// @Success 200 {object} models.KnowledgeItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /knowledge/{id} [put]
func (h *KnowledgeHandler) UpdateKnowledgeItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "updateKnowledgeItem")
	}

	var in services.KnowledgeInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	item, err := services.UpdateKnowledgeItem(h.DB, id, in)
	if err != nil {
		return respondError(c, err, "updateKnowledgeItem")
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

// DeleteKnowledgeItem handles DELETE /api/knowledge/:id
// @Summary Delete knowledge item
// @Tags Knowledge
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /knowledge/{id} [delete]
func (h *KnowledgeHandler) DeleteKnowledgeItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteKnowledgeItem")
	}

	if err := services.DeleteKnowledgeItem(h.DB, id); err != nil {
		return respondError(c, err, "deleteKnowledgeItem")
	}
	return utils.MutationSuccessResponse(c, id, 1)
}
