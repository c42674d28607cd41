package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"imsforecast.app/config"
	"imsforecast.app/pkg/logger"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.StorageConfig{
		CurrentFile:   filepath.Join(dir, "isr_cities_utf8.xml"),
		ArchiveDir:    filepath.Join(dir, "archive"),
		OutputDir:     filepath.Join(dir, "output"),
		RetentionDays: 14,
	}
	return NewStore(cfg, logger.New()), dir
}

func TestWriteAndReadCurrent(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.WriteCurrent("<Feed/>"))

	data, err := store.ReadCurrent()
	require.NoError(t, err)
	assert.Equal(t, "<Feed/>", string(data))
}

func TestReadCurrentMissing(t *testing.T) {
	store, _ := newTestStore(t)

	data, err := store.ReadCurrent()

	assert.Nil(t, data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_ERROR")
}

func TestWriteArchive(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.WriteArchive("<Feed/>", "2025-11-01"))

	data, err := os.ReadFile(filepath.Join(dir, "archive", "isr_cities_2025-11-01.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<Feed/>", string(data))
}

func TestListArchives(t *testing.T) {
	t.Run("NewestFirst", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.WriteArchive("a", "2025-10-20"))
		require.NoError(t, store.WriteArchive("b", "2025-11-01"))
		require.NoError(t, store.WriteArchive("c", "2025-10-25"))

		archives, err := store.ListArchives()

		require.NoError(t, err)
		require.Len(t, archives, 3)
		assert.Equal(t, "2025-11-01", archives[0].Date)
		assert.Equal(t, "2025-10-25", archives[1].Date)
		assert.Equal(t, "2025-10-20", archives[2].Date)
	})

	t.Run("SkipsInvalidNames", func(t *testing.T) {
		store, dir := newTestStore(t)
		require.NoError(t, store.WriteArchive("a", "2025-11-01"))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "archive", "isr_cities_garbage.xml"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "archive", "notes.txt"), []byte("x"), 0o644))

		archives, err := store.ListArchives()

		require.NoError(t, err)
		require.Len(t, archives, 1)
		assert.Equal(t, "2025-11-01", archives[0].Date)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		store, _ := newTestStore(t)

		archives, err := store.ListArchives()

		assert.NoError(t, err)
		assert.Empty(t, archives)
	})
}

func TestLatestArchive(t *testing.T) {
	t.Run("ReturnsNewest", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.WriteArchive("a", "2025-10-20"))
		require.NoError(t, store.WriteArchive("b", "2025-11-01"))

		latest, ok := store.LatestArchive()

		require.True(t, ok)
		assert.Equal(t, "2025-11-01", latest.Date)
	})

	t.Run("EmptyArchive", func(t *testing.T) {
		store, _ := newTestStore(t)

		latest, ok := store.LatestArchive()

		assert.False(t, ok)
		assert.Nil(t, latest)
	})
}

func TestPurge(t *testing.T) {
	today := time.Date(2025, 11, 10, 6, 0, 0, 0, time.UTC)

	t.Run("RetentionWindow", func(t *testing.T) {
		store, dir := newTestStore(t)
		require.NoError(t, store.WriteArchive("old", "2025-10-20"))      // 21 days old
		require.NoError(t, store.WriteArchive("fresh", "2025-11-01"))    // 9 days old
		garbage := filepath.Join(dir, "archive", "isr_cities_garbage.xml")
		require.NoError(t, os.WriteFile(garbage, []byte("x"), 0o644))

		deleted, err := store.Purge(today, false)

		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.NoFileExists(t, filepath.Join(dir, "archive", "isr_cities_2025-10-20.xml"))
		assert.FileExists(t, filepath.Join(dir, "archive", "isr_cities_2025-11-01.xml"))
		assert.FileExists(t, garbage)
	})

	t.Run("ExactBoundaryRetained", func(t *testing.T) {
		// 2025-10-27 is exactly retention days old, not strictly older
		store, dir := newTestStore(t)
		require.NoError(t, store.WriteArchive("edge", "2025-10-27"))

		deleted, err := store.Purge(today, false)

		require.NoError(t, err)
		assert.Equal(t, 0, deleted)
		assert.FileExists(t, filepath.Join(dir, "archive", "isr_cities_2025-10-27.xml"))
	})

	t.Run("DryRunDeletesNothing", func(t *testing.T) {
		store, dir := newTestStore(t)
		require.NoError(t, store.WriteArchive("old", "2025-10-20"))

		deleted, err := store.Purge(today, true)

		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.FileExists(t, filepath.Join(dir, "archive", "isr_cities_2025-10-20.xml"))
	})
}

func TestDateFromFilename(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name string
		file string
		date string
		ok   bool
	}{
		{"Valid", "isr_cities_2025-10-20.xml", "2025-10-20", true},
		{"NotADate", "isr_cities_garbage.xml", "", false},
		{"WrongPrefix", "cities_2025-10-20.xml", "", false},
		{"WrongSuffix", "isr_cities_2025-10-20.json", "", false},
		{"ImpossibleDate", "isr_cities_2025-13-40.xml", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := store.dateFromFilename(tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.date, date)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.EnsureDirectories())

	assert.DirExists(t, filepath.Join(dir, "archive"))
	assert.DirExists(t, filepath.Join(dir, "output"))
}
