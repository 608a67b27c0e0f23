// sequence.go
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

// Package sequence issues human-readable business identifiers such as
// AUD-2025-001 or TRIP-20250901-0004. Suffixes are reserved through the
// sequence_counters table instead of a max-and-increment query over the entity
// table, so identifiers within one scope are gap-free, strictly increasing and
// never duplicated under concurrent creation.
package sequence

import (
	"errors"
	"fmt"
	"time"

	"github.com/sqmworks/supplier-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Kind selects the prefix, the zero-padded suffix width and the scope window
// of one identifier family.
type Kind struct {
	Name   string
	Prefix string
	Width  int
	Scope  func(time.Time) string
}

var (
	// AuditNumber produces AUD-<YYYY>-<NNN>, scoped per calendar year.
	AuditNumber = Kind{Name: "audit", Prefix: "AUD", Width: 3, Scope: yearScope}

	// TaskNumber produces TASK-<YYYY>-<NNN>, scoped per calendar year.
	TaskNumber = Kind{Name: "task", Prefix: "TASK", Width: 3, Scope: yearScope}

	// TripNumber produces TRIP-<YYYYMMDD>-<NNNN>, scoped per calendar day.
	TripNumber = Kind{Name: "trip", Prefix: "TRIP", Width: 4, Scope: dateScope}
)

func yearScope(t time.Time) string {
	return fmt.Sprintf("%04d", t.Year())
}

func dateScope(t time.Time) string {
	return t.Format("20060102")
}

// Next reserves and formats the next identifier for the given kind. The
// reservation commits in its own transaction; the caller persists the new
// record afterwards. A reserved value that is never used leaves no gap in the
// counter, only an unused suffix, which is acceptable and rare (it takes a
// failed insert after a successful reservation).
func Next(db *gorm.DB, kind Kind, now time.Time) (string, error) {
	scope := kind.Scope(now)

	var value uint64
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		value, err = reserve(tx, kind.Name, scope)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("reserve %s sequence: %w", kind.Name, err)
	}

	return fmt.Sprintf("%s-%s-%0*d", kind.Prefix, scope, kind.Width, value), nil
}

// reserve increments the (name, scope) counter row and returns the new value,
// creating the row at 1 when the scope is fresh.
func reserve(tx *gorm.DB, name, scope string) (uint64, error) {
	var counter models.SequenceCounter

	query := tx.Where("name = ? AND scope = ?", name, scope)
	// SQLite serializes writers on its own and rejects FOR UPDATE.
	if tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	err := query.First(&counter).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		counter = models.SequenceCounter{Name: name, Scope: scope, Value: 1}
		if createErr := tx.Create(&counter).Error; createErr != nil {
			// Another transaction created the row first; fall through to the
			// increment path against the now-existing row.
			if err := query.First(&counter).Error; err != nil {
				return 0, createErr
			}
			return increment(tx, &counter)
		}
		return counter.Value, nil

	case err != nil:
		return 0, err

	default:
		return increment(tx, &counter)
	}
}

func increment(tx *gorm.DB, counter *models.SequenceCounter) (uint64, error) {
	counter.Value++
	if err := tx.Model(counter).Update("value", counter.Value).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}
