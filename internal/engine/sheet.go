package engine

import (
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/itemdata/validator/internal/table"
)

// sheet.go is the cell-level workbook path: instead of materializing a
// Table, it annotates the active sheet of a workbook in place. This keeps
// spreadsheet formatting, extra sheets, and formulas intact, at the price of
// a fixed summary position and the alphabetic-content rule only.

// MaxSheetRows caps how many data rows the cell-level path processes. Rows
// beyond the cap are left unannotated and excluded from any statistics; this
// is a documented limitation, not a failure.
const MaxSheetRows = 100000

// summaryColumn is the fixed 1-indexed column where the ValidationErrors
// header and per-row summaries are written (column T). Any existing content
// there is overwritten.
const summaryColumn = 20

// AnnotateWorkbook runs the alphabetic-content rule over the first 19
// columns of the active sheet and writes per-row summaries into column 20.
// Row 1 is treated as the header and supplies the column names used in
// messages.
func AnnotateWorkbook(f *excelize.File) error {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return &table.ParseError{Format: "xlsx", Err: errors.New("workbook has no active sheet")}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return &table.ParseError{Format: "xlsx", Err: err}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return &table.ParseError{Format: "xlsx", Err: errors.New("missing header row")}
	}
	header := rows[0]

	headerCell, err := excelize.CoordinatesToCellName(summaryColumn, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, headerCell, ErrorColumn); err != nil {
		return err
	}

	dataRows := len(rows) - 1
	if dataRows > MaxSheetRows {
		dataRows = MaxSheetRows
	}

	for i := 0; i < dataRows; i++ {
		rec := rows[i+1]

		var msgs []string
		for col := 0; col < alphaColumnLimit && col < len(rec); col++ {
			v := rec[col]
			if strings.TrimSpace(v) == "" {
				continue
			}
			if alphaPattern.MatchString(v) {
				name := ""
				if col < len(header) {
					name = header[col]
				}
				msgs = append(msgs, name+": contains alphabets")
			}
		}

		cell, err := excelize.CoordinatesToCellName(summaryColumn, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, strings.Join(msgs, messageSeparator)); err != nil {
			return err
		}
	}

	return nil
}
