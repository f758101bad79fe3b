package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matsen/litreview/internal/cluster"
	"github.com/matsen/litreview/internal/dedupe"
	"github.com/matsen/litreview/internal/importer"
	"github.com/matsen/litreview/internal/taxonomy"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"locked", fmt.Errorf("merge: %w", dedupe.ErrLocked), ExitLocked},
		{"degenerate", fmt.Errorf("%w: 1 record", cluster.ErrDegenerateInput), ExitDegenerate},
		{"corrupt", fmt.Errorf("a.ris: %w", &importer.ParseError{Line: 3, Msg: "ER outside of a record"}), ExitDataError},
		{"invalid taxonomy", fmt.Errorf("%w: no categories", taxonomy.ErrInvalidTaxonomy), ExitDataError},
		{"missing taxonomy", fmt.Errorf("t.yaml: %w", taxonomy.ErrTaxonomyNotFound), ExitConfigError},
		{"missing export dir", fmt.Errorf("exports: %w", dedupe.ErrExportDirMissing), ExitConfigError},
		{"other", errors.New("disk full"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
