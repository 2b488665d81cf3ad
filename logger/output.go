package logger

// OutputCategory defines a category of CLI output that can be enabled/disabled.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
//	0 (default) - results, errors with hints
//	1 (-v)      - + per-table load/dump progress, resolved session pin
//	2 (-vv)     - + timing, effective configuration
//	3 (-vvv)    - + SQL statements
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Command output
	OutputErrors                        // Errors with hints

	// Level 1 (-v) - Informational
	OutputProgress // Per-table row counts during load and dump
	OutputSession  // Which generation a command resolved against

	// Level 2 (-vv) - Detailed
	OutputTiming // Operation timing
	OutputConfig // Config values loaded/applied

	// Level 3 (-vvv) - Trace
	OutputSQLQueries // Individual SQL statements executed
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputProgress:   VerbosityInfo,
	OutputSession:    VerbosityInfo,
	OutputTiming:     VerbosityDebug,
	OutputConfig:     VerbosityDebug,
	OutputSQLQueries: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:    "results",
	OutputErrors:     "errors",
	OutputProgress:   "progress",
	OutputSession:    "session",
	OutputTiming:     "timing",
	OutputConfig:     "config",
	OutputSQLQueries: "sql",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// Outputw logs msg at info level, tagged with its category, when verbosity
// enables the category.
func Outputw(verbosity int, category OutputCategory, msg string, keysAndValues ...interface{}) {
	if Logger == nil || !ShouldOutput(verbosity, category) {
		return
	}
	Logger.Infow(msg, append([]interface{}{FieldCategory, CategoryName(category)}, keysAndValues...)...)
}
