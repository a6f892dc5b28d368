package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_report_runs.up.sql",
		"000001_create_report_runs.down.sql",
		"000003_add_index.up.sql",
		"000002_other.up.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	v, err := LatestVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
}

func TestLatestVersion_Empty(t *testing.T) {
	_, err := LatestVersion(t.TempDir())
	assert.Error(t, err)
}

func TestLatestVersion_ShippedMigrations(t *testing.T) {
	v, err := LatestVersion(filepath.Join("..", "..", "db", "pg"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestResolveMigrationFolder(t *testing.T) {
	abs := t.TempDir()
	ms := NewMigrationService(logging.NewNop(), &MigrationConfig{MigrationFolderPath: abs})
	assert.Equal(t, abs, ms.resolveMigrationFolder())

	ms = NewMigrationService(logging.NewNop(), &MigrationConfig{MigrationFolderPath: "does/not/exist"})
	wd, _ := os.Getwd()
	assert.Equal(t, filepath.Join(wd, "does/not/exist"), ms.resolveMigrationFolder())
}

func TestDatabase_NotStarted(t *testing.T) {
	d := New(Config{DatabaseName: "fern"}, logging.NewNop())
	assert.Equal(t, "postgres", d.GetName())
	assert.Nil(t, d.DB())
	assert.ErrorIs(t, d.Ping(t.Context()), ErrNotConnected)
	assert.NoError(t, d.Stop(t.Context()))
}
