package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// openTestDB opens a migrated database in a temp dir.
func openTestDB(t *testing.T) (*sqlx.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return db, path
}

func TestOpenMigrates(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)

	version, dirty, err := SchemaVersion(db)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, LatestMigrationVersion, version)

	var n int
	err = db.Get(&n, "SELECT COUNT(*) FROM items")
	require.NoError(t, err)
	require.Zero(t, n)

	// A second run has nothing to do.
	require.NoError(t, ApplyMigrations(db, TargetLatest))
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	db, path := openTestDB(t)
	_, err := db.Exec(
		"INSERT INTO items (id, item_type, folder) VALUES (1, 1, 1)",
	)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	var n int
	require.NoError(t, db2.Get(&n, "SELECT COUNT(*) FROM items"))
	require.Equal(t, 1, n)
}

func TestDowngradeRefused(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)

	err := ApplyMigrations(db, TargetLatest, WithLatestVersion(0))
	require.ErrorIs(t, err, ErrMigrationDowngrade)
}

func TestSchemaVersionFresh(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := SchemaVersion(db)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Zero(t, version)
}

func TestMapSQLErrorUnique(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)

	insert := "INSERT INTO items (id, item_type, folder) VALUES (7, 1, 1)"
	_, err := db.Exec(insert)
	require.NoError(t, err)

	_, err = db.Exec(insert)
	require.Error(t, err)
	require.True(t, IsUniqueViolation(MapSQLError(err)))
	require.False(t, IsContentionError(MapSQLError(err)))
}

func TestMapSQLErrorMissingTable(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)

	_, err := db.Exec("SELECT * FROM missing_table")
	require.Error(t, err)
	require.True(t, IsSchemaError(MapSQLError(err)))
}

func TestMapSQLErrorPassthrough(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain")
	require.Equal(t, plain, MapSQLError(plain))
}

func TestExecTxCommitAndRollback(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)
	exec := NewTxExecutor(db)
	ctx := context.Background()

	err := exec.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("INSERT INTO items (id, item_type, folder) " +
			"VALUES (1, 1, 1)")
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = exec.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("INSERT INTO items (id, item_type, folder) " +
			"VALUES (2, 1, 1)")
		require.NoError(t, err)

		return boom
	})
	require.ErrorIs(t, err, boom)

	var ids []int64
	require.NoError(t, exec.DB().Select(&ids, "SELECT id FROM items"))
	require.Equal(t, []int64{1}, ids)
}

func TestExecTxDoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)
	exec := NewTxExecutor(db, WithTxRetries(3))

	var attempts int
	err := exec.ExecTx(context.Background(), true, func(*sqlx.Tx) error {
		attempts++
		return errors.New("no retry")
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestRandRetryDelayBounds(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		initial := time.Duration(rapid.Int64Range(
			2, int64(time.Second),
		).Draw(t, "initial"))
		maxDelay := time.Duration(rapid.Int64Range(
			int64(initial), int64(10*time.Second),
		).Draw(t, "max"))
		attempt := rapid.IntRange(0, 64).Draw(t, "attempt")

		opts := &txExecutorOptions{
			initialRetryDelay: initial,
			maxRetryDelay:     maxDelay,
		}
		delay := opts.randRetryDelay(attempt)

		if delay < initial/2 {
			t.Fatalf("delay %v below half of %v", delay, initial)
		}
		if attempt > 0 && delay > maxDelay {
			t.Fatalf("delay %v above max %v", delay, maxDelay)
		}
	})
}
