package testing

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/teranos/porydex/db"
)

// CreateTestDB creates a migrated SQLite catalog in a temp dir.
// A file is used rather than ":memory:" because every pooled connection to
// an in-memory database sees a different, empty database.
// Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.OpenWithMigrations(context.Background(), filepath.Join(t.TempDir(), "porydex.db"), zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		d.Close()
	})

	return d
}

// Exec runs each statement against d, failing the test on the first error.
func Exec(t *testing.T, d *db.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// SeedGenerations inserts a small registry: three base-series generations
// and two side branches, with ids deliberately out of release order.
//
//	id  identifier   release_order  base
//	1   red-blue     1              yes
//	2   gold-silver  2              yes
//	4   colosseum    3              no
//	5   sun-moon     5              yes
//	8   lets-go      8              no
func SeedGenerations(t *testing.T, d *db.DB) {
	t.Helper()
	Exec(t, d,
		`INSERT INTO generations (id, identifier, release_order, is_base_series) VALUES
			(1, 'red-blue', 1, TRUE),
			(2, 'gold-silver', 2, TRUE),
			(4, 'colosseum', 3, FALSE),
			(5, 'sun-moon', 5, TRUE),
			(8, 'lets-go', 8, FALSE)`,
	)
}
