package engine

// Mode selects which rule subset and column scope apply to a validation run.
// The mode is fixed per endpoint, never user input.
type Mode int

const (
	// ModeFull runs the complete rule set. The alphabetic-content rule is
	// scoped to the first 19 columns, skipping columns already covered by a
	// named or positional rule.
	ModeFull Mode = iota

	// ModeLegacy runs only the alphabetic-content rule over the first 19
	// columns, with no exclusions.
	ModeLegacy

	// ModeLegacyAll runs only the alphabetic-content rule over every column.
	// Kept for one historical entry point.
	ModeLegacyAll
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeLegacy:
		return "legacy"
	case ModeLegacyAll:
		return "legacy-all"
	default:
		return "unknown"
	}
}

// alphaScope returns how many leading columns the alphabetic-content rule
// inspects for a table of the given width.
func (m Mode) alphaScope(columns int) int {
	if m == ModeLegacyAll || columns < alphaColumnLimit {
		return columns
	}
	return alphaColumnLimit
}
