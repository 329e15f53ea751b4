package table

import "fmt"

// ParseError reports input bytes that could not be decoded as the declared
// format, including files with no header row. No partial table accompanies a
// ParseError.
type ParseError struct {
	Format string // "csv" or "xlsx"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
