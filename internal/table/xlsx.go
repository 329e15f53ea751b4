package table

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses a spreadsheet into a Table. The first row of the active
// sheet is the header; column order is the order encountered. Cells whose
// displayed value parses as a number are tagged numeric, everything else is
// text.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, &ParseError{Format: "xlsx", Err: errors.New("workbook has no active sheet")}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Err: err}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &ParseError{Format: "xlsx", Err: errors.New("missing header row")}
	}

	t := &Table{Columns: rows[0]}
	t.Rows = make([][]Cell, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = cellFromSheet(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// cellFromSheet converts a displayed sheet value to a tagged cell.
func cellFromSheet(v string) Cell {
	if strings.TrimSpace(v) == "" {
		return Empty()
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		return NumberCell(n, v)
	}
	return TextCell(v)
}

// WriteXLSX serializes a Table to spreadsheet bytes on a single sheet,
// header in row 1. Numeric cells are written as numbers so spreadsheet
// consumers keep their formatting and formulas working.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := range t.Rows {
		record := make([]interface{}, len(t.Columns))
		for col := range record {
			c := t.At(i, col)
			switch c.Kind {
			case KindNumber:
				record[col] = c.Number
			case KindText:
				record[col] = c.Text
			default:
				record[col] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return err
		}
	}

	return f.Write(w)
}
