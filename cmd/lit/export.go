package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/export"
	"github.com/matsen/litreview/internal/reference"
)

var (
	exportFormat string
	exportAppend string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "bibtex", "Output format: bibtex or ris")
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append new BibTeX entries to this .bib file, skipping DOIs already present")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the unique table as BibTeX or RIS",
	Long: `Export the unique table as BibTeX or RIS to stdout.

With --append, entries whose DOI is already in the target .bib file are
skipped and citation keys taken there are avoided.

Examples:
  lit export > refs.bib
  lit export --format ris > unique-copy.ris
  lit export --append thesis/refs.bib`,
	RunE: runExport,
}

// AppendResult is the response for export --append.
type AppendResult struct {
	Path    string   `json:"path"`
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Keys    []string `json:"keys"`
}

func runExport(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	refs := mustReadUnique(cfg)

	if exportAppend != "" {
		if exportFormat != "bibtex" {
			exitWithError(ExitError, "--append requires --format bibtex")
		}
		appendBibTeX(refs)
		return nil
	}

	// Exports are always text output, never JSON
	switch exportFormat {
	case "bibtex":
		fmt.Print(export.ToBibTeXList(refs))
	case "ris":
		if err := export.WriteRIS(os.Stdout, refs); err != nil {
			exitWithError(ExitError, "writing RIS: %v", err)
		}
	default:
		exitWithError(ExitError, "unknown format %q (want bibtex or ris)", exportFormat)
	}
	return nil
}

func appendBibTeX(refs []reference.Reference) {
	idx, err := export.ParseBibTeXFile(exportAppend)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", exportAppend, err)
	}

	kept, keys := idx.Filter(refs)
	if len(kept) > 0 {
		var b strings.Builder
		for i, ref := range kept {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(export.ToBibTeX(keys[i], ref))
		}
		if err := export.AppendToBibFile(exportAppend, b.String()); err != nil {
			exitWithError(ExitError, "appending to %s: %v", exportAppend, err)
		}
	}
	if keys == nil {
		keys = []string{}
	}

	result := AppendResult{Path: exportAppend, Added: len(kept), Skipped: len(refs) - len(kept), Keys: keys}
	if humanOutput {
		fmt.Printf("Appended %d entries to %s (%d already present)\n", result.Added, result.Path, result.Skipped)
	} else {
		outputJSON(result)
	}
}
