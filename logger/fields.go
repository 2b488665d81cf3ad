package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across porydex.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Output category of CLI diagnostics (see Outputw)
	FieldCategory = "category"

	// Storage
	FieldURI       = "uri"
	FieldDialect   = "dialect"
	FieldTable     = "table"
	FieldMigration = "migration"
	FieldVersion   = "version"
	FieldQuery     = "query"
	FieldArgs      = "args"

	// Reference data
	FieldLocation = "location"
	FieldFile     = "file"
	FieldLine     = "line"
	FieldRows     = "rows"

	// Catalog
	FieldKind         = "kind"
	FieldEntity       = "entity"
	FieldGenerationID = "generation_id"
	FieldGeneration   = "generation"
	FieldSessionID    = "session_id"
	FieldPinned       = "pinned"

	// Timing and counts
	FieldDurationMS = "duration_ms"
	FieldCount      = "count"

	// Errors
	FieldError = "error"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	loader.Options{Logger: logger.ComponentLogger("loader")}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	tableLogger := logger.ChildLogger(base, logger.FieldTable, table.Name)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

// OrNop returns l, or a no-op logger when l is nil. Components that take an
// optional logger call it once in their constructor.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
