// library.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/services"
	"github.com/sqmworks/supplier-portal/internal/types"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// LibraryHandler handles file library routes
type LibraryHandler struct {
	DB    *gorm.DB
	Store *attachment.Store
}

// ListLibraryFiles handles GET /api/library
// @Summary List library files
// @Description Library files filtered by category and matched by q, with per-category counts
// @Tags Library
// @Produce json
// @Param q query string false "Search term"
// @Param category query string false "Category filter"
// @Success 200 {object} services.LibraryList
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /library [get]
func (h *LibraryHandler) ListLibraryFiles(c *fiber.Ctx) error {
	result, err := services.ListLibraryFiles(h.DB, c.Query("q"), c.Query("category"))
	if err != nil {
		return respondError(c, err, "listLibraryFiles")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetLibraryFile handles GET /api/library/:id
// @Summary Get library file
// @Tags Library
// @Produce json
// @Param id path int true "File ID"
// @Success 200 {object} models.LibraryFile
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/{id} [get]
func (h *LibraryHandler) GetLibraryFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "getLibraryFile")
	}

	file, err := services.GetLibraryFile(h.DB, id)
	if err != nil {
		return respondError(c, err, "getLibraryFile")
	}
	return c.Status(fiber.StatusOK).JSON(file)
}

// UploadLibraryFile handles POST /api/library
// @Summary Upload library file
// @Description Store a file under its category; an unknown category is rejected
// @Tags Library
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param category formData string true "Category"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param version formData string false "Version"
// @Param issue_date formData string false "Issue date (YYYY-MM-DD)"
// @Param related_process formData string false "Related process"
// @Param supplier_name formData string false "Supplier name"
// @Param part_category formData string false "Part category"
// @Param tags formData string false "Comma-separated tags"
// @Success 201 {object} models.LibraryFile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /library [post]
func (h *LibraryHandler) UploadLibraryFile(c *fiber.Ctx) error {
	originalName, declaredMIME, payload, err := readUpload(c)
	if err != nil {
		return respondError(c, err, "uploadLibraryFile")
	}

	in := services.LibraryFileInput{
		Title:          c.FormValue("title"),
		Description:    c.FormValue("description"),
		Category:       c.FormValue("category"),
		Version:        c.FormValue("version"),
		IssueDate:      c.FormValue("issue_date"),
		RelatedProcess: c.FormValue("related_process"),
		SupplierName:   c.FormValue("supplier_name"),
		PartCategory:   c.FormValue("part_category"),
		Tags:           parseFormTags(c.FormValue("tags")),
	}

	file, err := services.UploadLibraryFile(h.DB, h.Store, in, originalName, declaredMIME, payload)
	if err != nil {
		return respondError(c, err, "uploadLibraryFile")
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

// UpdateLibraryFile handles PUT /api/library/:id
// @Summary Update library file metadata
// @Tags Library
// @Accept json
// @Produce json
// @Param id path int true "File ID"
// @Param body body services.LibraryFileInput true "Metadata fields"
// @Success 200 {object} models.LibraryFile
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/{id} [put]
func (h *LibraryHandler) UpdateLibraryFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "updateLibraryFile")
	}

	var in services.LibraryFileInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	file, err := services.UpdateLibraryFile(h.DB, id, in)
	if err != nil {
		return respondError(c, err, "updateLibraryFile")
	}
	return c.Status(fiber.StatusOK).JSON(file)
}

// ViewLibraryFile handles GET /api/library/:id/view
// @Summary Preview library file
// @Description Serve the file inline and bump its view counter
// @Tags Library
// @Produce octet-stream
// @Param id path int true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/{id}/view [get]
func (h *LibraryHandler) ViewLibraryFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "viewLibraryFile")
	}

	file, err := services.GetLibraryFile(h.DB, id)
	if err != nil {
		return respondError(c, err, "viewLibraryFile")
	}
	if err := services.TouchLibraryView(h.DB, id); err != nil {
		return respondError(c, err, "viewLibraryFile")
	}
	return serveFile(c, h.Store, file.FileMeta, false)
}

// DownloadLibraryFile handles GET /api/library/:id/download
// @Summary Download library file
// @Description Serve the file as an attachment and bump its download counter
// @Tags Library
// @Produce octet-stream
// @Param id path int true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/{id}/download [get]
func (h *LibraryHandler) DownloadLibraryFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "downloadLibraryFile")
	}

	file, err := services.GetLibraryFile(h.DB, id)
	if err != nil {
		return respondError(c, err, "downloadLibraryFile")
	}
	if err := services.TouchLibraryDownload(h.DB, id); err != nil {
		return respondError(c, err, "downloadLibraryFile")
	}
	return serveFile(c, h.Store, file.FileMeta, true)
}

// OpenLibraryFile handles POST /api/library/:id/open
// @Summary Open library file on the host
// @Description Open the file with the host's default application; intended for single-machine deployments
// @Tags Library
// @Produce json
// @Param id path int true "File ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/{id}/open [post]
func (h *LibraryHandler) OpenLibraryFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "openLibraryFile")
	}

	file, err := services.GetLibraryFile(h.DB, id)
	if err != nil {
		return respondError(c, err, "openLibraryFile")
	}
	if err := h.Store.OpenOnHost(file.RelPath); err != nil {
		return respondError(c, err, "openLibraryFile")
	}
	return utils.MutationSuccessResponse(c, id, 0)
}

// DeleteLibraryFile handles DELETE /api/library/:id
// @Summary Delete library file
// @Tags Library
// @Produce json
// @Param id path int true "File ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/{id} [delete]
func (h *LibraryHandler) DeleteLibraryFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "deleteLibraryFile")
	}

	if err := services.DeleteLibraryFile(h.DB, h.Store, id); err != nil {
		return respondError(c, err, "deleteLibraryFile")
	}
	return utils.MutationSuccessResponse(c, id, 1)
}

// parseFormTags splits a comma-separated form value into tags
func parseFormTags(raw string) types.FlexStrings {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags types.FlexStrings
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
