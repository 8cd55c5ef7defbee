package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/webcite/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates the index tables and records the schema version", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open())
		defer db.Close()

		ctx := context.Background()
		for _, table := range []string{"files", "fields"} {
			var n int
			require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n), table)
			assert.Zero(t, n, table)
		}

		var version int
		require.NoError(t, db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
		assert.Equal(t, sqlite.SchemaVersion, version)
	})

	t.Run("fails when the directory does not exist", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/dir/index.db")
		require.Error(t, db.Open())
	})

	t.Run("uses WAL for file databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "index.db"))
		require.NoError(t, db.Open())
		defer db.Close()

		var mode string
		require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("keeps indexed files across reopen", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "index.db")
		bib := writeFile(t, dir, "refs.bib", "@misc{key1,\n  title = {Kept},\n}\n")

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := sqlite.NewIndex(db).Sync(context.Background(), []string{bib})
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()

		files, err := sqlite.NewIndex(db).Files(context.Background())
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, bib, files[0].Path)
	})
}
