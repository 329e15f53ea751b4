package engine

import "strings"

// Statistics is the per-file aggregate summary computed alongside row
// validation. Field names match the JSON wire shape consumed by callers.
type Statistics struct {
	TotalRows             int               `json:"total_rows"`
	TotalColumns          int               `json:"total_columns"`
	ColumnNames           []string          `json:"column_names"`
	EmptyCellsByColumn    map[string]int    `json:"empty_cells_by_column"`
	TotalEmptyCells       int               `json:"total_empty_cells"`
	RowsWithErrors        int               `json:"rows_with_errors"`
	ValidationSummary     ValidationSummary `json:"validation_summary"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds"`
}

// ValidationSummary aggregates violation counts by normalized category.
type ValidationSummary struct {
	TotalErrors     int            `json:"total_errors"`
	ErrorCategories map[string]int `json:"error_categories"`
}

// categoryOf extracts the normalized category from a violation message: the
// substring after the first ": ". Messages with no prefix are their own
// category.
func categoryOf(msg string) string {
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
