// common.go
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
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/sqmworks/supplier-portal/internal/attachment"
	"github.com/sqmworks/supplier-portal/internal/models"
	"github.com/sqmworks/supplier-portal/internal/types"
	"github.com/sqmworks/supplier-portal/internal/utils"
)

// parseID reads a numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, types.NewValidationError("invalid %s", name)
	}
	return id, nil
}

// parsePagination reads page/page_size query parameters with defaults
func parsePagination(c *fiber.Ctx) (page, pageSize int) {
	page = c.QueryInt("page", 1)
	pageSize = c.QueryInt("page_size", 0)
	if pageSize == 0 {
		pageSize = c.QueryInt("per_page", 20)
	}
	return page, pageSize
}

// respondError maps a service error onto the JSON error envelope. Service
// errors carry their status in the CustomError code; anything else is a 500.
func respondError(c *fiber.Ctx, err error, operation string) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		if custom.Code == fiber.StatusNotFound {
			return utils.NotFoundResponse(c, custom.Message)
		}
		return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, operation)
}

// readUpload extracts the uploaded file from the multipart form
func readUpload(c *fiber.Ctx) (originalName, declaredMIME string, payload []byte, err error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", "", nil, types.NewValidationError("no file selected")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	payload, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, fmt.Errorf("read upload: %w", err)
	}

	return fileHeader.Filename, fileHeader.Header.Get("Content-Type"), payload, nil
}

// serveFile streams a stored attachment with the original filename. The
// disposition is inline for previews and attachment for downloads; nosniff
// keeps browsers from second-guessing the declared type.
func serveFile(c *fiber.Ctx, store *attachment.Store, meta models.FileMeta, asAttachment bool) error {
	data, err := store.Read(meta.RelPath)
	if err != nil {
		return respondError(c, err, "serveFile")
	}

	mime := meta.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}

	disposition := "inline"
	if asAttachment {
		disposition = "attachment"
	}

	c.Set(fiber.HeaderContentType, mime)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, meta.OriginalName))
	c.Set("X-Content-Type-Options", "nosniff")
	return c.Send(data)
}
