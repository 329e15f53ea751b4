// Package engine applies the per-column rule set to every row of a table,
// appends a ValidationErrors summary column, and aggregates per-file
// statistics. This package has no transport dependencies and never mutates
// source cells: malformed content is reported as a violation, not an error.
package engine

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/itemdata/validator/internal/table"
)

// ErrorColumn is the name of the appended per-row summary column.
const ErrorColumn = "ValidationErrors"

// messageSeparator joins the triggered rule messages of a single row.
const messageSeparator = "; "

// Result holds the annotated table and the statistics for one validation run.
type Result struct {
	Table *table.Table
	Stats *Statistics
}

// binding resolves the rule tables against a concrete header. Rules whose
// column is absent (or whose position is past the table width) are simply
// not bound; absent columns never produce violations.
type binding struct {
	digits   []boundDigit
	costs    []boundCost
	required []boundRequired
	covered  map[int]bool // column indexes excluded from the alphabetic sweep
}

type boundDigit struct {
	rule digitRule
	col  int
}

type boundCost struct {
	rule costRule
	col  int
}

type boundRequired struct {
	name string
	col  int
}

func bind(t *table.Table) binding {
	b := binding{covered: make(map[int]bool)}

	for _, r := range digitRules {
		if col, ok := t.ColumnIndex(r.Column); ok {
			b.digits = append(b.digits, boundDigit{rule: r, col: col})
			b.covered[col] = true
		}
	}
	for _, r := range costRules {
		if r.Position <= len(t.Columns) {
			col := r.Position - 1
			b.costs = append(b.costs, boundCost{rule: r, col: col})
			b.covered[col] = true
		}
	}
	for _, name := range requiredColumns {
		if col, ok := t.ColumnIndex(name); ok {
			b.required = append(b.required, boundRequired{name: name, col: col})
			b.covered[col] = true
		}
	}
	return b
}

// Validate runs the rule set selected by mode over every row of t, appends
// the ValidationErrors column in place, and returns the annotated table with
// its statistics. Row order and original cell values are unchanged.
//
// The only failure is a table without a header; everything else, including
// every malformed cell, is reported through the annotations.
func Validate(t *table.Table, mode Mode) (*Result, error) {
	start := time.Now()

	if len(t.Columns) == 0 {
		return nil, &table.ParseError{Format: "table", Err: errors.New("missing header row")}
	}

	var b binding
	if mode == ModeFull {
		b = bind(t)
	}
	alphaScope := mode.alphaScope(len(t.Columns))

	stats := &Statistics{
		TotalRows:          len(t.Rows),
		TotalColumns:       len(t.Columns),
		ColumnNames:        append([]string(nil), t.Columns...),
		EmptyCellsByColumn: make(map[string]int, len(t.Columns)),
		ValidationSummary: ValidationSummary{
			ErrorCategories: make(map[string]int),
		},
	}
	for _, col := range t.Columns {
		if _, seen := stats.EmptyCellsByColumn[col]; !seen {
			stats.EmptyCellsByColumn[col] = 0
		}
	}

	annotations := make([]string, len(t.Rows))
	for i := range t.Rows {
		msgs := validateRow(t, i, mode, b, alphaScope)
		annotations[i] = strings.Join(msgs, messageSeparator)

		if len(msgs) > 0 {
			stats.RowsWithErrors++
		}
		for _, msg := range msgs {
			stats.ValidationSummary.TotalErrors++
			stats.ValidationSummary.ErrorCategories[categoryOf(msg)]++
		}

		for col, name := range t.Columns {
			if t.At(i, col).IsEmpty() {
				stats.EmptyCellsByColumn[name]++
				stats.TotalEmptyCells++
			}
		}
	}

	t.AppendColumn(ErrorColumn, annotations)

	elapsed := time.Since(start).Seconds()
	stats.ProcessingTimeSeconds = math.Round(elapsed*100) / 100

	return &Result{Table: t, Stats: stats}, nil
}

// validateRow evaluates every rule against one row, in fixed order. Rules
// are independent: an earlier violation never suppresses a later rule.
func validateRow(t *table.Table, row int, mode Mode, b binding, alphaScope int) []string {
	var msgs []string

	if mode == ModeFull {
		for _, d := range b.digits {
			if msg := d.rule.check(t.At(row, d.col)); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		for _, c := range b.costs {
			if msg := c.rule.check(t.At(row, c.col)); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		for _, r := range b.required {
			if t.At(row, r.col).IsEmpty() {
				msgs = append(msgs, r.name+": cannot be empty")
			}
		}
	}

	for col := 0; col < alphaScope; col++ {
		if mode == ModeFull && b.covered[col] {
			continue
		}
		c := t.At(row, col)
		if c.IsEmpty() {
			continue
		}
		if alphaPattern.MatchString(c.String()) {
			msgs = append(msgs, t.Columns[col]+": contains alphabets")
		}
	}

	return msgs
}
