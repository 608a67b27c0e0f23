// suppliers.go
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

package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// SupplierHandler handles supplier routes
type SupplierHandler struct {
	DB *gorm.DB
}

// ListSuppliers handles GET /api/suppliers
// @Summary List suppliers
// @Description List suppliers filtered by q on code or name, active first
// @Tags Suppliers
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {array} models.Supplier
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *fiber.Ctx) error {
	suppliers, err := services.ListSuppliers(h.DB, c.Query("q"))
	if err != nil {
		return respondError(c, err, "listSuppliers")
	}
	return c.Status(fiber.StatusOK).JSON(suppliers)
}

// GetSupplier handles GET /api/suppliers/:id
// @Summary Get supplier
// @Tags Suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.Supplier
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "getSupplier")
	}

	supplier, err := services.GetSupplier(h.DB, id)
	if err != nil {
		return respondError(c, err, "getSupplier")
	}
	return c.Status(fiber.StatusOK).JSON(supplier)
}

// CreateSupplier handles POST /api/suppliers
// @Summary Create supplier
// @Description Create a supplier with a unique code
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param body body services.SupplierInput true "Supplier fields"
// @Success 201 {object} models.Supplier
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	var in services.SupplierInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	supplier, err := services.CreateSupplier(h.DB, in)
	if err != nil {
		return respondError(c, err, "createSupplier")
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

// UpdateSupplier handles PUT /api/suppliers/:id
// @Summary Update supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param body body services.SupplierInput true "Supplier fields"
// @Success 200 {object} models.Supplier
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /suppliers/{id} [put]
func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "updateSupplier")
	}

	var in services.SupplierInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	supplier, err := services.UpdateSupplier(h.DB, id, in)
	if err != nil {
		return respondError(c, err, "updateSupplier")
	}
	return c.Status(fiber.StatusOK).JSON(supplier)
}

// ImportSuppliers handles POST /api/suppliers/import
// @Summary Import suppliers from a spreadsheet
// @Description Upsert suppliers from an uploaded workbook with code/name columns
// @Tags Suppliers
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /suppliers/import [post]
func (h *SupplierHandler) ImportSuppliers(c *fiber.Ctx) error {
	_, _, payload, err := readUpload(c)
	if err != nil {
		return respondError(c, err, "importSuppliers")
	}

	wb, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return utils.ErrorResponse(c, "Invalid workbook", fiber.StatusBadRequest, "validation")
	}
	defer wb.Close()

	imported, err := services.ImportSuppliersFromWorkbook(h.DB, wb)
	if err != nil {
		return respondError(c, err, "importSuppliers")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "imported": imported})
}
