// Package table provides the in-memory tabular model plus CSV and XLSX
// ingestion and serialization. A Table is an ordered list of column names and
// an ordered list of rows of untyped cells; row order is always preserved.
package table

import "strings"

// Table is an in-memory tabular file: ordered columns and ordered rows.
// Rows may be ragged (shorter or longer than the header); out-of-range
// positions read as empty cells.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// ColumnIndex returns the position of the named column. Duplicate column
// names resolve to the first occurrence.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(col), strings.TrimSpace(name)) {
			return i, true
		}
	}
	return 0, false
}

// At returns the cell at the given row and column index. Positions outside
// the stored row data read as empty.
func (t *Table) At(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) {
		return Empty()
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return Empty()
	}
	return r[col]
}

// AppendColumn appends a text column as the new final column. values must
// have one entry per row. Ragged rows are normalized to the header width
// first, short rows padded with empty cells and over-long rows truncated, so
// the new column lands at a consistent position.
func (t *Table) AppendColumn(name string, values []string) {
	width := len(t.Columns)
	for i := range t.Rows {
		if len(t.Rows[i]) > width {
			t.Rows[i] = t.Rows[i][:width]
		}
		for len(t.Rows[i]) < width {
			t.Rows[i] = append(t.Rows[i], Empty())
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		if v == "" {
			t.Rows[i] = append(t.Rows[i], Empty())
		} else {
			t.Rows[i] = append(t.Rows[i], TextCell(v))
		}
	}
	t.Columns = append(t.Columns, name)
}
