package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates up and down files", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "Add Freeze Snapshots", "snapshot table for module freezes")
		require.NoError(t, err)

		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
		assert.Contains(t, filepath.Base(mf.UpPath), "add_freeze_snapshots.up.sql")
		assert.Contains(t, filepath.Base(mf.DownPath), "add_freeze_snapshots.down.sql")
		assert.Len(t, mf.Version, 14)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "Add Freeze Snapshots")
		assert.Contains(t, string(up), "snapshot table for module freezes")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("creates missing migrations directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		mf, err := CreateMigration(dir, "init", "initial schema")
		require.NoError(t, err)
		assert.FileExists(t, mf.UpPath)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Add Freeze Snapshots", "add_freeze_snapshots"},
		{"add-queries-table", "add_queries_table"},
		{"already_clean", "already_clean"},
		{"Mixed  --  Separators", "mixed_separators"},
		{"trailing ", "trailing"},
		{"v2 schema!", "v2_schema"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.input))
		})
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up migrations only once", func(t *testing.T) {
		dir := t.TempDir()

		for _, name := range []string{
			"000001_create_jobs.up.sql",
			"000001_create_jobs.down.sql",
			"000002_create_modules.up.sql",
			"000002_create_modules.down.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_create_jobs", "000002_create_modules"}, migrations)
	})

	t.Run("missing directory yields empty list", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
