// Package errors provides error handling for porydex.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for CLI output
//   - Error marks, so one failure can match several sentinels
//
// Usage:
//
//	// Wrap with context
//	if err := tx.Commit(); err != nil {
//	    return errors.Wrap(err, "commit load")
//	}
//
//	// Check the taxonomy
//	if errors.Is(err, errors.ErrNotFound) {
//	    // unknown generation id
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	Mark           = crdb.Mark
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors for the catalog taxonomy.
// Use these with errors.Is(); wrap them to add context while preserving the type.
var (
	// ErrNotFound indicates a generation id that is not in the registry
	ErrNotFound = New("not found")

	// ErrInvalidGeneration indicates a session pin that failed validation.
	// Errors marked with it always match ErrNotFound as well.
	ErrInvalidGeneration = New("invalid generation")

	// ErrStorage indicates a failure reported by the store (connectivity, SQL, scan)
	ErrStorage = New("storage error")

	// ErrIntegrity indicates reference data violating a uniqueness or foreign-key
	// invariant, or a row that cannot be parsed into its table's columns
	ErrIntegrity = New("integrity violation")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsIntegrityError checks if an error is or wraps ErrIntegrity.
func IsIntegrityError(err error) bool {
	return err != nil && Is(err, ErrIntegrity)
}

// IsStorageError checks if an error is or wraps ErrStorage.
func IsStorageError(err error) bool {
	return err != nil && Is(err, ErrStorage)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidGenerationError reports a pin to a generation the registry does not know.
// The result matches both ErrInvalidGeneration and ErrNotFound.
func NewInvalidGenerationError(id int) error {
	err := Wrapf(ErrNotFound, "generation %d", id)
	err = Mark(err, ErrInvalidGeneration)
	return WithHint(err, "run `porydex generations` to list known generation ids")
}

// NewIntegrityError creates an integrity error with a formatted message
func NewIntegrityError(format string, args ...interface{}) error {
	return Wrap(ErrIntegrity, Newf(format, args...).Error())
}

// MarkIntegrity tags an underlying driver error as an integrity violation,
// keeping the original message and cause chain. The mark goes inside the
// wrap because GetStack only reads the outermost layer.
func MarkIntegrity(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrapf(Mark(err, ErrIntegrity), format, args...)
}

// MarkStorage tags an underlying driver error as a storage failure.
// Errors already classified as integrity violations keep that classification.
func MarkStorage(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if Is(err, ErrIntegrity) {
		return Wrapf(err, format, args...)
	}
	return Wrapf(Mark(err, ErrStorage), format, args...)
}
