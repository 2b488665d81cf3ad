package db

import (
	"bufio"
	"context"
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/schema"
)

//go:embed sqlite/migrations/*.sql postgres/migrations/*.sql
var migrations embed.FS

const createSchemaMigrations = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Querier is satisfied by *sql.DB and *sql.Tx, so migrations can run inside
// a caller's load transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migrate runs all pending migrations in one transaction.
func (db *DB) Migrate(ctx context.Context, logger *zap.SugaredLogger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.MarkStorage(err, "begin migration tx")
	}
	if err := Migrate(ctx, tx, db.Dialect, logger); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.MarkStorage(err, "commit migrations")
	}
	return nil
}

// Migrate applies the dialect's pending migrations through q.
// If logger is provided, logs migration progress; otherwise operates silently.
func Migrate(ctx context.Context, q Querier, dialect Dialect, logger *zap.SugaredLogger) error {
	files, err := migrationFiles(dialect)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, createSchemaMigrations); err != nil {
		return errors.MarkStorage(err, "create schema_migrations")
	}

	applied := 0
	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		var exists bool
		err := q.QueryRowContext(ctx,
			dialect.Rebind("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)"), version,
		).Scan(&exists)
		if err != nil {
			return errors.MarkStorage(err, "check migration %s", version)
		}
		if exists {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)",
					logFieldMigration, filename,
					logFieldVersion, version,
				)
			}
			continue
		}

		ddl, err := migrations.ReadFile(path.Join(dialect.migrationsDir(), filename))
		if err != nil {
			return errors.Wrapf(err, "read %s", filename)
		}
		if logger != nil {
			logger.Infow("Applying migration",
				logFieldMigration, filename,
				logFieldVersion, version,
				logFieldDialect, dialect.String(),
			)
		}
		for _, stmt := range splitStatements(string(ddl)) {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return errors.MarkStorage(err, "execute %s", filename)
			}
		}
		if _, err := q.ExecContext(ctx, dialect.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
			return errors.MarkStorage(err, "record %s", filename)
		}
		applied++
	}

	if logger != nil {
		logger.Infow("Migrations complete",
			logFieldDialect, dialect.String(),
			"total_migrations", len(files),
			"applied", applied,
		)
	}
	return nil
}

// Drop removes every catalog table in reverse load order, along with the
// migration history, so a following Migrate recreates the schema.
func Drop(ctx context.Context, q Querier, dialect Dialect, logger *zap.SugaredLogger) error {
	for _, table := range schema.DropOrder() {
		if _, err := q.ExecContext(ctx, "DROP TABLE IF EXISTS "+schema.Quote(table.Name)); err != nil {
			return errors.MarkStorage(err, "drop %s", table.Name)
		}
		if logger != nil {
			logger.Debugw("Dropped table", logFieldTable, table.Name)
		}
	}
	if _, err := q.ExecContext(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return errors.MarkStorage(err, "drop schema_migrations")
	}
	if logger != nil {
		logger.Infow("Dropped catalog schema", logFieldDialect, dialect.String(), "tables", len(schema.Tables))
	}
	return nil
}

func migrationFiles(dialect Dialect) ([]string, error) {
	entries, err := migrations.ReadDir(dialect.migrationsDir())
	if err != nil {
		return nil, errors.Wrapf(err, "read %s migrations", dialect)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// splitStatements splits a semicolon-terminated DDL script into executable
// statements, dropping blank lines and "--" comment lines.
func splitStatements(ddl string) []string {
	scanner := bufio.NewScanner(strings.NewReader(ddl))
	var stmts []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				stmts = append(stmts, stmt)
			}
			current.Reset()
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		stmts = append(stmts, tail)
	}
	return stmts
}
