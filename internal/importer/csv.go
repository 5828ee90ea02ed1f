// Package importer turns raw export rows into ledger rows: validation,
// sign normalization, merchant derivation, and the three-way reconcile
// (insert, skip, merge) that makes re-imports idempotent.
package importer

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"the305/accountant/internal/models"
)

// ReadRawRows loads a CSV export into raw rows. Only the shape is
// checked here; cell-level validation happens during reconciliation.
func ReadRawRows(path string) ([]models.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []models.RawRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}
