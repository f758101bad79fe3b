// Package storage handles persistence of the reference tables (RIS files)
// and the derived SQLite search cache.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/litreview/internal/export"
	"github.com/matsen/litreview/internal/importer"
	"github.com/matsen/litreview/internal/reference"
)

// ErrNotFound is returned when a table file does not exist.
// Callers that treat a missing table as empty check it with errors.Is.
var ErrNotFound = errors.New("table file not found")

// ReadTable reads all references from a RIS table file.
func ReadTable(path string) ([]reference.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("opening table file: %w", err)
	}
	defer f.Close()

	refs, err := importer.ParseRIS(f)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return refs, nil
}

// ReadTableOrEmpty reads a table, treating a missing file as an empty table.
func ReadTableOrEmpty(path string) ([]reference.Reference, error) {
	refs, err := ReadTable(path)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return refs, err
}

// WriteAll writes all references to a RIS table file atomically,
// replacing existing content. Uses temp file + rename.
func WriteAll(path string, refs []reference.Reference) error {
	return WriteTables(TableWrite{Path: path, Refs: refs})
}

// TableWrite is one table file to be replaced by WriteTables.
type TableWrite struct {
	Path string
	Refs []reference.Reference
}

// WriteTables replaces several table files together. Every table is written
// to a temp file first; nothing is renamed into place unless all of them were
// written, so a write failure leaves every table as it was.
func WriteTables(writes ...TableWrite) error {
	staged := make([]string, 0, len(writes))
	renamed := 0
	defer func() {
		for _, tmp := range staged[renamed:] {
			os.Remove(tmp)
		}
	}()

	for _, w := range writes {
		tmp, err := stageTable(w.Path, w.Refs)
		if err != nil {
			return fmt.Errorf("%s: %w", w.Path, err)
		}
		staged = append(staged, tmp)
	}
	for i, w := range writes {
		if err := os.Rename(staged[i], w.Path); err != nil {
			return fmt.Errorf("renaming temp file for %s: %w", w.Path, err)
		}
		renamed++
	}
	return nil
}

// stageTable writes refs to a synced temp file next to path and returns the
// temp file's name.
func stageTable(path string, refs []reference.Reference) (string, error) {
	// Create temp file in same directory for atomic rename
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating table directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.ris")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := export.WriteRIS(tmpFile, refs); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing table: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return tmpPath, nil
}

// FindByDOI searches for a reference by DOI, comparing normalized forms.
func FindByDOI(refs []reference.Reference, doi string) (int, bool) {
	want := reference.NormalizeDOI(doi)
	if want == "" {
		return -1, false
	}
	for i, ref := range refs {
		if reference.NormalizeDOI(ref.DOI) == want {
			return i, true
		}
	}
	return -1, false
}
