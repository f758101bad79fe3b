package main

import (
	"errors"

	"github.com/matsen/litreview/internal/cluster"
	"github.com/matsen/litreview/internal/config"
	"github.com/matsen/litreview/internal/dedupe"
	"github.com/matsen/litreview/internal/importer"
	"github.com/matsen/litreview/internal/taxonomy"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no project, missing taxonomy or export dir)
	ExitDataError   = 3 // Data error (corrupt export or table, invalid taxonomy)
	ExitDegenerate  = 4 // Too little data for the requested analysis
	ExitLocked      = 5 // Another merge holds the lock
)

// exitCodeFor maps a library error to the exit code reported for it.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, dedupe.ErrLocked):
		return ExitLocked
	case errors.Is(err, cluster.ErrDegenerateInput):
		return ExitDegenerate
	case errors.Is(err, importer.ErrCorrupt), errors.Is(err, taxonomy.ErrInvalidTaxonomy):
		return ExitDataError
	case errors.Is(err, taxonomy.ErrTaxonomyNotFound),
		errors.Is(err, dedupe.ErrExportDirMissing),
		errors.Is(err, config.ErrNotInProject):
		return ExitConfigError
	default:
		return ExitError
	}
}
