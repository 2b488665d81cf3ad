package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	query := "SELECT id FROM moves WHERE id = ? AND identifier <> '?' AND generation_id = ?"

	assert.Equal(t, query, SQLite.Rebind(query))
	assert.Equal(t,
		"SELECT id FROM moves WHERE id = $1 AND identifier <> '?' AND generation_id = $2",
		Postgres.Rebind(query))
}

func TestDialectNames(t *testing.T) {
	assert.Equal(t, "sqlite3", SQLite.DriverName())
	assert.Equal(t, "pgx", Postgres.DriverName())
	assert.Equal(t, "postgres", Postgres.String())
	assert.Equal(t, "sqlite/migrations", SQLite.migrationsDir())
}
