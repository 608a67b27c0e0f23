package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sqmworks/supplier-portal/internal/types"
)

// Pagination limits shared by the list operations
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps page and pageSize to usable values
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// like wraps a search term for a LIKE query
func like(q string) string {
	return "%" + q + "%"
}

// cleanField trims a form value, returning "" for none-ish placeholders
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "none", "n/a", "null":
		return ""
	}
	return s
}

// ParseDate parses an ISO date string into a date-only column value
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, types.NewValidationError("invalid date format: %s", s)
	}
	return datatypes.Date(t), nil
}

// ParseOptionalDate parses an ISO date, returning nil for an empty string
func ParseOptionalDate(s string) (*datatypes.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseFlexibleDate tries the date layouts seen in spreadsheet cells.
// Returns nil without error when no layout matches, matching the tolerant
// extraction behavior: a malformed date never fails the whole import.
func parseFlexibleDate(s string) *datatypes.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "01/02/2006", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d := datatypes.Date(t)
			return &d
		}
	}
	return nil
}

// translateDBError maps a write error onto the service error taxonomy.
// Unique key collisions become conflicts; everything else passes through.
func translateDBError(err error, conflictMsg string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyMessage(err.Error()) {
		return types.NewConflictError(conflictMsg, args...)
	}
	return fmt.Errorf("database error: %w", err)
}

// isDuplicateKeyMessage covers drivers that do not translate their unique
// violation errors through gorm.ErrDuplicatedKey.
func isDuplicateKeyMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed")
}
