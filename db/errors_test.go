package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/porydex/errors"
)

func TestIsConstraintViolation(t *testing.T) {
	t.Run("sqlite unique violation", func(t *testing.T) {
		db := openTemp(t)
		ctx := context.Background()
		insert := "INSERT INTO generations (id, identifier, release_order, is_base_series) VALUES (?, ?, ?, ?)"
		_, err := db.ExecContext(ctx, insert, 1, "red-blue", 1, true)
		require.NoError(t, err)

		_, err = db.ExecContext(ctx, insert, 2, "gold-silver", 1, true)
		require.Error(t, err)
		assert.True(t, IsConstraintViolation(err))

		classified := Classify(err, "insert generations line %d", 3)
		assert.True(t, errors.IsIntegrityError(classified))
		assert.False(t, errors.IsStorageError(classified))
	})

	t.Run("sqlite foreign key violation", func(t *testing.T) {
		db := openTemp(t)
		_, err := db.Exec("INSERT INTO games (id, identifier, generation_id) VALUES (1, 'red', 99)")
		require.Error(t, err)
		assert.True(t, IsConstraintViolation(err))
	})

	t.Run("postgres class 23", func(t *testing.T) {
		err := errors.Wrap(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}, "insert")
		assert.True(t, IsConstraintViolation(err))
		assert.False(t, IsConstraintViolation(&pgconn.PgError{Code: "42P01"}))
	})

	t.Run("other errors are storage errors", func(t *testing.T) {
		err := errors.New("disk I/O error")
		assert.False(t, IsConstraintViolation(err))
		assert.True(t, errors.IsStorageError(Classify(err, "read")))
		assert.Nil(t, Classify(nil, "read"))
	})
}

func TestIsDatabaseClosed(t *testing.T) {
	assert.False(t, IsDatabaseClosed(nil))
	assert.True(t, IsDatabaseClosed(errors.Wrap(ErrDatabaseClosed, "query")))

	db := openTemp(t)
	db.Close()
	_, err := db.Exec("SELECT 1")
	require.Error(t, err)
	assert.True(t, IsDatabaseClosed(err))
}
