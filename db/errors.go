package db

import (
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/logger"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed database.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is closed.
// This handles both:
// - Wrapped ErrDatabaseClosed errors from this package
// - Raw sql driver errors that contain "database is closed" in their message
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// IsConstraintViolation reports whether err is a uniqueness, foreign-key,
// not-null or check violation raised by either supported driver.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE class 23: integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}

// Classify marks a driver error as an integrity violation when it is one and
// as a storage failure otherwise.
func Classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if IsConstraintViolation(err) {
		return errors.MarkIntegrity(err, format, args...)
	}
	return errors.MarkStorage(err, format, args...)
}

const (
	logFieldMigration = logger.FieldMigration
	logFieldVersion   = logger.FieldVersion
	logFieldTable     = logger.FieldTable
)
