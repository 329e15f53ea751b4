package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/itemdata/validator/internal/table"
)

// rules.go defines the per-column rule tables. The rule set is data, not
// code: adding a column check means adding an entry, not a branch.
//
// Every violation message has the shape "<column or label>: <category>". The
// category (everything after the first ": ") is what the statistics layer
// aggregates on.

// alphaColumnLimit bounds the alphabetic-content rule to the leading columns
// of the file in the standard modes.
const alphaColumnLimit = 19

// alphaPattern matches any ASCII letter anywhere in a cell's textual form.
var alphaPattern = regexp.MustCompile(`[A-Za-z]`)

// digitRule validates a fixed-length numeric code column, addressed by
// header name. Absent columns are skipped.
type digitRule struct {
	Column string
	Digits int
}

// costRule validates a numeric column addressed by fixed 1-indexed position.
// Violations are reported under Label rather than the column's actual
// header. Tables narrower than Position skip the rule.
type costRule struct {
	Position int
	Label    string
}

// Rule tables, in evaluation order. Digit rules run first, then cost rules,
// then required-text rules, then the alphabetic-content sweep.
var (
	digitRules = []digitRule{
		{Column: "UPCCASE", Digits: 11},
		{Column: "CICID", Digits: 8},
	}

	costRules = []costRule{
		{Position: 12, Label: "Current Case Cost"},
		{Position: 13, Label: "New Case Cost"},
	}

	requiredColumns = []string{"Warehouse Name", "Division"}
)

// check returns the violation message for a digit-code cell, or "" if the
// cell passes. The three checks are exclusive: the first failure wins.
func (r digitRule) check(c table.Cell) string {
	if c.IsEmpty() {
		return fmt.Sprintf("%s: cannot be empty", r.Column)
	}
	s := strings.TrimSpace(c.String())
	if !allDigits(s) {
		return fmt.Sprintf("%s: must contain only numbers", r.Column)
	}
	if len(s) != r.Digits {
		return fmt.Sprintf("%s: must be exactly %d digits", r.Column, r.Digits)
	}
	return ""
}

// check returns the violation message for a cost cell, or "" if it passes.
func (r costRule) check(c table.Cell) string {
	if c.IsEmpty() {
		return fmt.Sprintf("%s: cannot be empty", r.Label)
	}
	if c.Kind == table.KindNumber {
		return ""
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(c.String()), 64); err != nil {
		return fmt.Sprintf("%s: must be a number", r.Label)
	}
	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
