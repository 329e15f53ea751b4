package table

import (
	"encoding/csv"
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV parses delimited text into a Table. The first record is the
// header. Excel-exported files often carry a byte order mark, so input runs
// through a BOM-aware decoder before parsing. Records may have variable
// lengths; short rows read as empty at the missing positions.
func ReadCSV(r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: "csv", Err: err}
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &ParseError{Format: "csv", Err: errors.New("missing header row")}
	}

	t := &Table{Columns: records[0]}
	t.Rows = make([][]Cell, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			if v == "" {
				row[i] = Empty()
			} else {
				row[i] = TextCell(v)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV serializes a Table back to delimited text, header first.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for i := range t.Rows {
		for col := range record {
			record[col] = t.At(i, col).String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
