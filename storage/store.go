// Package storage manages the current feed snapshot and the dated,
// retention-bounded archive copies on disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"imsforecast.app/config"
	"imsforecast.app/pkg/errors"
	"imsforecast.app/pkg/logger"
)

const (
	archivePrefix = "isr_cities_"
	archiveSuffix = ".xml"
	dateLayout    = "2006-01-02"
)

// ArchiveFile is one dated snapshot in the archive directory
type ArchiveFile struct {
	Date string
	Path string
}

// Store reads and writes feed snapshots under the configured directories
type Store struct {
	config *config.StorageConfig
	log    *logger.Logger
}

// NewStore creates a snapshot store
func NewStore(cfg *config.StorageConfig, log *logger.Logger) *Store {
	return &Store{
		config: cfg,
		log:    log,
	}
}

// EnsureDirectories creates the archive and output directories if needed
func (s *Store) EnsureDirectories() error {
	for _, dir := range []string{s.config.ArchiveDir, s.config.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to create directory %s", dir), err)
		}
	}
	return nil
}

// CurrentPath returns the location of the current snapshot file
func (s *Store) CurrentPath() string {
	return s.config.CurrentFile
}

// ArchivePath returns the archive location for the given date
func (s *Store) ArchivePath(date string) string {
	return filepath.Join(s.config.ArchiveDir, archivePrefix+date+archiveSuffix)
}

// WriteCurrent overwrites the current snapshot file.
// Writes are not atomic; a crash mid-write leaves a partial file.
func (s *Store) WriteCurrent(text string) error {
	if err := os.WriteFile(s.config.CurrentFile, []byte(text), 0o644); err != nil {
		return errors.NewStorageError("failed to write current snapshot", err)
	}
	s.log.Info("saved current snapshot", "path", s.config.CurrentFile, "bytes", len(text))
	return nil
}

// WriteArchive writes a dated archive copy. Callers treat a failure here
// as a warning; the archive is a best-effort secondary copy.
func (s *Store) WriteArchive(text, date string) error {
	if err := os.MkdirAll(s.config.ArchiveDir, 0o755); err != nil {
		return errors.NewStorageError("failed to create archive directory", err)
	}
	path := s.ArchivePath(date)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.NewStorageError("failed to write archive snapshot", err)
	}
	s.log.Info("saved archive snapshot", "path", path)
	return nil
}

// ReadCurrent reads the current snapshot file
func (s *Store) ReadCurrent() ([]byte, error) {
	data, err := os.ReadFile(s.config.CurrentFile)
	if err != nil {
		return nil, errors.NewStorageError("failed to read current snapshot", err)
	}
	return data, nil
}

// ReadArchive reads one dated archive snapshot
func (s *Store) ReadArchive(archive *ArchiveFile) ([]byte, error) {
	data, err := os.ReadFile(archive.Path)
	if err != nil {
		return nil, errors.NewStorageError("failed to read archive snapshot", err)
	}
	return data, nil
}

// ListArchives returns dated archive snapshots ordered newest first.
// Files whose names do not match the isr_cities_YYYY-MM-DD.xml pattern
// are skipped with a warning.
func (s *Store) ListArchives() ([]ArchiveFile, error) {
	entries, err := os.ReadDir(s.config.ArchiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStorageError("failed to read archive directory", err)
	}

	var archives []ArchiveFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := s.dateFromFilename(entry.Name())
		if !ok {
			s.log.Warn("skipping archive file with invalid name", "file", entry.Name())
			continue
		}
		archives = append(archives, ArchiveFile{
			Date: date,
			Path: filepath.Join(s.config.ArchiveDir, entry.Name()),
		})
	}

	// YYYY-MM-DD sorts lexicographically in date order
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Date > archives[j].Date
	})

	return archives, nil
}

// LatestArchive returns the newest dated archive snapshot, if any
func (s *Store) LatestArchive() (*ArchiveFile, bool) {
	archives, err := s.ListArchives()
	if err != nil {
		s.log.Warn("failed to list archive snapshots", "error", err)
		return nil, false
	}
	if len(archives) == 0 {
		return nil, false
	}
	return &archives[0], true
}

// Purge deletes archive snapshots whose embedded date is strictly older
// than today minus the retention window. Malformed filenames are never
// deleted. Returns the number of files removed (or that would be removed
// in dry-run mode).
func (s *Store) Purge(now time.Time, dryRun bool) (int, error) {
	// Compare calendar dates, not clock times
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -s.config.RetentionDays)

	archives, err := s.ListArchives()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, archive := range archives {
		fileDate, err := time.Parse(dateLayout, archive.Date)
		if err != nil {
			s.log.Warn("skipping archive file with invalid date", "file", archive.Path)
			continue
		}
		if !fileDate.Before(cutoff) {
			continue
		}
		if dryRun {
			s.log.Info("dry run: would delete old archive", "file", archive.Path)
			deleted++
			continue
		}
		if err := os.Remove(archive.Path); err != nil {
			s.log.Warn("failed to delete old archive", "file", archive.Path, "error", err)
			continue
		}
		s.log.Info("deleted old archive", "file", archive.Path)
		deleted++
	}

	if deleted == 0 {
		s.log.Info("no archive files past retention", "retention_days", s.config.RetentionDays)
	}

	return deleted, nil
}

func (s *Store) dateFromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
		return "", false
	}
	date := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", false
	}
	return date, true
}
