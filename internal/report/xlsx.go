package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Reporte"

var headerStyle = &excelize.Style{
	Font: &excelize.Font{Bold: true},
	Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
	Border: []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	},
	Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
}

// built-in number format 2 is 0.00
var decimalStyle = &excelize.Style{NumFmt: 2}

// XLSX renders t as a single-sheet workbook with a frozen, styled header.
// Float columns get two decimals.
func XLSX(t Table) (out []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	sheet := t.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet %s: %w", sheet, err)
	}

	if err := writeHeader(f, sheet, t.Header); err != nil {
		return nil, err
	}
	if err := writeRows(f, sheet, t.Rows); err != nil {
		return nil, err
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header row: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	if len(header) == 0 {
		return nil
	}
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(headerStyle)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, h := range header {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(max(12, len(h)+4))); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	decimals := make(map[int]bool)
	for r, row := range rows {
		cells := make([]any, len(row))
		for c, v := range row {
			switch v := v.(type) {
			case time.Time:
				cells[c] = formatCell(v)
			case float64:
				decimals[c] = true
				cells[c] = v
			default:
				cells[c] = v
			}
		}
		anchor, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, anchor, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if len(decimals) == 0 {
		return nil
	}
	style, err := f.NewStyle(decimalStyle)
	if err != nil {
		return fmt.Errorf("failed to create decimal style: %w", err)
	}
	for c := range decimals {
		top, _ := excelize.CoordinatesToCellName(c+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(c+1, len(rows)+1)
		if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return fmt.Errorf("failed to style decimal column %d: %w", c+1, err)
		}
	}
	return nil
}
