// Package export renders inventory rows as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"metalstock/internal/domain/inventory"
)

// utf8BOM makes spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

const (
	colCompany   = "Компания"
	colMaterial  = "Материал"
	colSize      = "Размер"
	colOwnership = "Принадлежность"
	colBalance   = "Остаток (т)"
)

func header(grouped bool) []string {
	if grouped {
		return []string{colCompany, colMaterial, colSize, colOwnership, colBalance}
	}
	return []string{colMaterial, colSize, colOwnership, colBalance}
}

func record(r inventory.Row, grouped bool) []string {
	rec := []string{r.Material, r.Size, r.Ownership.Label(), r.Balance.String()}
	if grouped {
		return append([]string{r.Company}, rec...)
	}
	return rec
}

// WriteInventoryCSV writes rows as semicolon-separated UTF-8 with a BOM.
// The company column is present only for per-company rows.
func WriteInventoryCSV(w io.Writer, rows []inventory.Row, grouped bool) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header(grouped)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r, grouped)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
