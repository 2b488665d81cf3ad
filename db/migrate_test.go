package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/schema"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := OpenWithMigrations(context.Background(), filepath.Join(t.TempDir(), "dex.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// The migrations must create exactly the columns the descriptors declare,
// in the same order, with the same nullability.
func TestMigrationsMatchSchema(t *testing.T) {
	db := openTemp(t)

	for _, table := range schema.Tables {
		t.Run(table.Name, func(t *testing.T) {
			rows, err := db.Query("SELECT name, \"notnull\", pk FROM pragma_table_info(?) ORDER BY cid", table.Name)
			require.NoError(t, err)
			defer rows.Close()

			var names []string
			var pk []string
			nullable := map[string]bool{}
			for rows.Next() {
				var name string
				var notNull, pkPos int
				require.NoError(t, rows.Scan(&name, &notNull, &pkPos))
				names = append(names, name)
				nullable[name] = notNull == 0
				if pkPos > 0 {
					pk = append(pk, name)
				}
			}
			require.NoError(t, rows.Err())

			assert.Equal(t, table.ColumnNames(), names)
			for _, c := range table.Columns {
				assert.Equal(t, c.Nullable, nullable[c.Name], "nullability of %s.%s", table.Name, c.Name)
			}
			assert.ElementsMatch(t, table.PrimaryKey, pk)
		})
	}
}

func TestEnumColumnsAreChecked(t *testing.T) {
	db := openTemp(t)
	for _, stmt := range []string{
		`INSERT INTO generations (id, identifier, release_order, is_base_series) VALUES (5, 'sun-moon', 5, TRUE)`,
		`INSERT INTO games (id, identifier, generation_id) VALUES (5, 'sun', 5)`,
		`INSERT INTO moves (id, identifier) VALUES (85, 'thunderbolt')`,
		`INSERT INTO types (id, identifier) VALUES (10, 'fire'), (12, 'grass')`,
		`INSERT INTO type_charts (id, identifier) VALUES (3, 'gen-6')`,
		`INSERT INTO type_matchups VALUES (3, 10, 12, 'super_effective')`,
		`INSERT INTO move_machines VALUES (5, 85, 'tm', 24)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	_, err := db.Exec(`INSERT INTO type_matchups VALUES (3, 12, 10, 'double')`)
	assert.Error(t, err)
	_, err = db.Exec(`INSERT INTO move_machines VALUES (5, 85, 'tutor', 1)`)
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx, nil))

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	files, err := migrationFiles(SQLite)
	require.NoError(t, err)
	assert.Equal(t, len(files), applied)
}

func TestDrop(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	_, err := db.Exec("INSERT INTO generations (id, identifier, release_order, is_base_series) VALUES (1, 'red-blue', 1, 1)")
	require.NoError(t, err)

	require.NoError(t, Drop(ctx, db, db.Dialect, zaptest.NewLogger(t).Sugar()))

	var tables int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'").Scan(&tables))
	assert.Equal(t, 0, tables)

	// A fresh migrate recreates an empty schema
	require.NoError(t, db.Migrate(ctx, nil))
	var generations int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM generations").Scan(&generations))
	assert.Equal(t, 0, generations)
}

func TestMigratePostgresStatements(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	files, err := migrationFiles(Postgres)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	// First migration already applied, the rest pending
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM schema_migrations WHERE version = \$1\)`).
		WithArgs("001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	for _, f := range files[1:] {
		version := f[:3]
		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(version).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		ddl, err := migrations.ReadFile("postgres/migrations/" + f)
		require.NoError(t, err)
		for range splitStatements(string(ddl)) {
			mock.ExpectExec(`CREATE (TABLE|INDEX)`).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectExec(`INSERT INTO schema_migrations \(version\) VALUES \(\$1\)`).WithArgs(version).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, Migrate(context.Background(), mockDB, Postgres, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFailureIsStorageError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnError(errors.New("permission denied"))

	err = Migrate(context.Background(), mockDB, Postgres, nil)
	require.Error(t, err)
	assert.True(t, errors.IsStorageError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitStatements(t *testing.T) {
	ddl := `-- comment
CREATE TABLE a (
    id INTEGER
);

CREATE INDEX idx ON a (id);
-- trailing
SELECT 1`
	stmts := splitStatements(ddl)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (\n    id INTEGER\n);", stmts[0])
	assert.Equal(t, "CREATE INDEX idx ON a (id);", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])
}

func TestEcho(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db := openTemp(t)

	q := Echo(db, zap.New(core).Sugar())
	var n int
	require.NoError(t, q.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM generations WHERE id > ?", 0).Scan(&n))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "SELECT COUNT(*) FROM generations WHERE id > ?", entry.Message)
	assert.Equal(t, "sql", entry.LoggerName)
}
