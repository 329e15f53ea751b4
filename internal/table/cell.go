package table

import (
	"strconv"
	"strings"
)

// CellKind discriminates the value shapes a cell can hold.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindNumber
	KindText
)

// Cell is a single untyped table value: empty, numeric, or text.
//
// Numeric cells keep both the parsed value and the raw text they were read
// from, so serializing a table writes back exactly what was ingested.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// Empty returns the empty/null cell.
func Empty() Cell {
	return Cell{Kind: KindEmpty}
}

// NumberCell returns a numeric cell. The raw display text is preserved
// alongside the parsed value.
func NumberCell(value float64, raw string) Cell {
	return Cell{Kind: KindNumber, Number: value, Text: raw}
}

// TextCell returns a text cell holding the raw string unchanged.
func TextCell(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

// IsEmpty reports whether the cell counts as empty: the null marker, or a
// textual value whose trimmed form has zero length.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// String renders the textual form of the cell. Empty cells render as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindEmpty:
		return ""
	case KindNumber:
		if c.Text != "" {
			return c.Text
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return c.Text
	}
}
