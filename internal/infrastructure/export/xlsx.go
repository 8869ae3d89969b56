package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"metalstock/internal/domain/inventory"
)

// SheetName is the worksheet holding the inventory.
const SheetName = "Остатки"

const totalLabel = "Итого"

// WriteInventoryXLSX writes rows to a single-sheet workbook with a total row.
// Balances are stored as numbers so the sheet can sum them.
func WriteInventoryXLSX(w io.Writer, rows []inventory.Row, grouped bool) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	head := header(grouped)
	headRow := make([]any, len(head))
	for i, h := range head {
		headRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	line := 2
	for _, r := range rows {
		rec := record(r, grouped)
		cells := make([]any, len(rec))
		for i, v := range rec[:len(rec)-1] {
			cells[i] = v
		}
		cells[len(rec)-1] = r.Balance.Float64()

		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", line, err)
		}
		line++
	}

	total := make([]any, len(head))
	total[0] = totalLabel
	total[len(head)-1] = inventory.TotalBalance(rows).Float64()
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &total); err != nil {
		return fmt.Errorf("write total: %w", err)
	}

	numFmt := "0.000"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(len(head), 2)
	last, _ := excelize.CoordinatesToCellName(len(head), line)
	if err := f.SetCellStyle(SheetName, first, last, style); err != nil {
		return fmt.Errorf("style balances: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
