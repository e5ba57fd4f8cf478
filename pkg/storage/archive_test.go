package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportArchiveSaveAndOpen(t *testing.T) {
	archive, err := NewExportArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("report-2025-09-01.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "report-2025-09-01.csv", name)

	file, err := archive.Open(name)
	require.NoError(t, err)
	defer file.Close()

	data, err := os.ReadFile(archive.Path(name))
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b\n"), data)
}

func TestExportArchiveSaveStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewExportArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save("../escape.csv", []byte("x"))
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "escape.csv"))
	assert.NoError(t, statErr)

	// Absolute paths are confined to the archive directory too.
	_, err = archive.Save(filepath.Join(t.TempDir(), "abs.csv"), []byte("y"))
	require.NoError(t, err)
	_, statErr = os.Stat(filepath.Join(dir, "abs.csv"))
	assert.NoError(t, statErr)
}

func TestExportArchiveCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewExportArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save("old.csv", []byte("x"))
	require.NoError(t, err)
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), stale, stale))

	_, err = archive.Save("fresh.csv", []byte("y"))
	require.NoError(t, err)

	deleted, err := archive.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, deleted)

	_, statErr := os.Stat(filepath.Join(dir, "fresh.csv"))
	assert.NoError(t, statErr)
}
