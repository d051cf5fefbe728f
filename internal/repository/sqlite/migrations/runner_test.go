package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/msomdec/portfolio-api/internal/repository/sqlite/migrations"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_CreatesTables(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, migrations.Run(ctx, db))

	_, err := db.ExecContext(ctx,
		`INSERT INTO uploads (id, category, title, original_name, mime_type, size, storage_ref, image_url, created_at)
		 VALUES ('a', 'logo', 't', 'o.png', 'image/png', 1, 'ref', 'http://x/ref', 1)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO orders (id, document, created_at) VALUES ('b', '{}', 1)`)
	require.NoError(t, err)
}

func TestRun_RejectsEmptyStorageRef(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()
	require.NoError(t, migrations.Run(ctx, db))

	_, err := db.ExecContext(ctx,
		`INSERT INTO uploads (id, category, title, original_name, mime_type, size, storage_ref, image_url, created_at)
		 VALUES ('a', 'logo', 't', 'o.png', 'image/png', 1, '', 'http://x/', 1)`)
	assert.Error(t, err)
}

func TestRun_Idempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, migrations.Run(ctx, db))
	require.NoError(t, migrations.Run(ctx, db), "second run should be a no-op")

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestRunFS_AppliesInFilenameOrder(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_add_column.sql": {Data: []byte("ALTER TABLE things ADD COLUMN label TEXT;")},
		"001_create.sql":     {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY);")},
		"README.md":          {Data: []byte("ignored")},
	}

	require.NoError(t, migrations.RunFS(ctx, db, fsys))

	_, err := db.ExecContext(ctx, "INSERT INTO things (label) VALUES ('ok')")
	require.NoError(t, err)
}

func TestRunFS_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE;")},
	}

	require.Error(t, migrations.RunFS(ctx, db, fsys))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Zero(t, count)
}
