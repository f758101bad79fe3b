package dedupe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/litreview/internal/importer"
	"github.com/matsen/litreview/internal/reference"
	"github.com/matsen/litreview/internal/storage"
)

// ErrExportDirMissing is returned when the export directory does not exist.
var ErrExportDirMissing = errors.New("export directory not found")

// DefaultConcurrency bounds how many export files are parsed at once.
const DefaultConcurrency = 4

// MergeConfig names the inputs and outputs of a merge.
type MergeConfig struct {
	ExportDir     string
	UniquePath    string
	DuplicatePath string

	// Concurrency bounds parallel parsing; 0 means DefaultConcurrency.
	Concurrency int
}

// Stats counts what classification did with each record.
type Stats struct {
	Records      int `json:"records"`
	AddedUnique  int `json:"added_unique"`
	Duplicates   int `json:"duplicates_recorded"`
	Dropped      int `json:"duplicates_dropped"`
	NoIdentifier int `json:"no_identifier"`
}

func (s *Stats) add(o Stats) {
	s.Records += o.Records
	s.AddedUnique += o.AddedUnique
	s.Duplicates += o.Duplicates
	s.Dropped += o.Dropped
	s.NoIdentifier += o.NoIdentifier
}

// FileResult reports one export file of a merge.
type FileResult struct {
	Path    string   `json:"path"`
	Format  string   `json:"format"`
	Records int      `json:"records"`
	Skipped []string `json:"skipped,omitempty"`
}

// Result summarizes a merge run.
type Result struct {
	NoInput       bool         `json:"no_input"`
	Files         []FileResult `json:"files"`
	Stats         Stats        `json:"stats"`
	UniqueSize    int          `json:"unique_size"`
	DuplicateSize int          `json:"duplicate_size"`
}

// Classify merges refs into the tables in order.
//
// A record whose key is already unique is a duplicate; only the first
// duplicate per key is kept. A record with a new key becomes unique.
// A record without an identifier always becomes unique under a synthetic key.
func Classify(unique, duplicate *Table, refs []reference.Reference) Stats {
	var s Stats
	for _, ref := range refs {
		s.Records++
		key, ok := KeyFor(ref)
		if !ok {
			unique.PutSynthetic(ref)
			s.NoIdentifier++
			s.AddedUnique++
			continue
		}
		if unique.Has(key) {
			if duplicate.Put(key, ref) {
				s.Duplicates++
			} else {
				s.Dropped++
			}
			continue
		}
		unique.Put(key, ref)
		s.AddedUnique++
	}
	return s
}

// Merge folds every export file in cfg.ExportDir into the persisted unique
// and duplicate tables and rewrites both. Both tables are staged before
// either is renamed into place.
//
// Nothing is written if a table or an export is corrupt, or if the
// directory holds no exports. Concurrent merges on the same tables are
// refused with ErrLocked.
func Merge(ctx context.Context, cfg MergeConfig, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	lock, err := AcquireLock(cfg.UniquePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("releasing lock", "error", err)
		}
	}()

	unique, err := LoadTable(cfg.UniquePath)
	if err != nil {
		return nil, fmt.Errorf("loading unique table: %w", err)
	}
	duplicate, err := LoadTable(cfg.DuplicatePath)
	if err != nil {
		return nil, fmt.Errorf("loading duplicate table: %w", err)
	}
	logger.Debug("tables loaded", "unique", unique.Len(), "duplicate", duplicate.Len())

	paths, err := ListExports(cfg.ExportDir, cfg.UniquePath, cfg.DuplicatePath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		logger.Warn("no export files found, nothing merged", "dir", cfg.ExportDir)
		return &Result{
			NoInput:       true,
			UniqueSize:    unique.Len(),
			DuplicateSize: duplicate.Len(),
		}, nil
	}

	files, err := parseAll(ctx, paths, cfg.Concurrency)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, f := range files {
		s := Classify(unique, duplicate, f.Refs)
		result.Stats.add(s)

		fr := FileResult{Path: f.Path, Format: string(f.Format), Records: len(f.Refs)}
		for _, skipErr := range f.Skipped {
			fr.Skipped = append(fr.Skipped, skipErr.Error())
			logger.Warn("skipped export entry", "file", f.Path, "error", skipErr)
		}
		result.Files = append(result.Files, fr)
		logger.Debug("export classified", "file", f.Path, "records", s.Records,
			"added", s.AddedUnique, "duplicates", s.Duplicates, "dropped", s.Dropped)
	}

	if err := storage.WriteTables(
		storage.TableWrite{Path: cfg.UniquePath, Refs: unique.Refs()},
		storage.TableWrite{Path: cfg.DuplicatePath, Refs: duplicate.Refs()},
	); err != nil {
		return nil, fmt.Errorf("writing tables: %w", err)
	}

	result.UniqueSize = unique.Len()
	result.DuplicateSize = duplicate.Len()
	logger.Info("merge complete",
		"files", len(files),
		"records", result.Stats.Records,
		"added_unique", result.Stats.AddedUnique,
		"duplicates", result.Stats.Duplicates,
		"dropped", result.Stats.Dropped,
		"unique_size", result.UniqueSize,
		"duplicate_size", result.DuplicateSize,
	)
	return result, nil
}

// ListExports returns the export files in dir sorted by name, skipping the
// table files themselves.
func ListExports(dir string, exclude ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dir, ErrExportDirMissing)
		}
		return nil, fmt.Errorf("reading export directory: %w", err)
	}

	skip := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := importer.FormatFor(e.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if abs, err := filepath.Abs(path); err == nil && skip[abs] {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// parseAll parses the files concurrently and returns them in input order.
// The first failure cancels the remaining work.
func parseAll(ctx context.Context, paths []string, limit int) ([]importer.File, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	files := make([]importer.File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := importer.ParseFile(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parsing exports: %w", err)
	}
	return files, nil
}
