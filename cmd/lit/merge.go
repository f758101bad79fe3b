package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/config"
	"github.com/matsen/litreview/internal/dedupe"
)

var (
	mergeConcurrency int
	mergeRebuild     bool
)

func init() {
	mergeCmd.Flags().IntVar(&mergeConcurrency, "concurrency", dedupe.DefaultConcurrency, "Export files parsed in parallel")
	mergeCmd.Flags().BoolVar(&mergeRebuild, "rebuild", false, "Rebuild the search index after merging")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge exports into the unique and duplicate tables",
	Long: `Merge every RIS and Paperpile JSON export in the export directory into
the unique and duplicate tables.

Records are identified by DOI, then URL. The first record seen for an
identifier is unique; the first repeat is kept in the duplicate table and
later repeats are dropped. Records with neither DOI nor URL are always
kept as unique.

Examples:
  lit merge
  lit merge --rebuild
  LIT_EXPORT_DIR=~/Downloads/exports lit merge --human`,
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	logger, closeLog := mustSetupLogger(cfg)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := dedupe.Merge(ctx, dedupe.MergeConfig{
		ExportDir:     cfg.Paths.ExportDir,
		UniquePath:    cfg.Paths.UniqueFile,
		DuplicatePath: cfg.Paths.DuplicateFile,
		Concurrency:   mergeConcurrency,
	}, logger)
	if err != nil {
		exitWithError(exitCodeFor(err), "merging exports: %v", err)
	}

	if mergeRebuild && !result.NoInput {
		db := mustOpenDatabase(root)
		defer db.Close()
		if _, err := db.RebuildFromTable(cfg.Paths.UniqueFile); err != nil {
			exitWithError(exitCodeFor(err), "rebuilding search index: %v", err)
		}
		logger.Info("search index rebuilt", "path", config.DBPath(root))
	}

	if humanOutput {
		printMergeHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

func printMergeHuman(r *dedupe.Result) {
	if r.NoInput {
		fmt.Println("No export files found; tables unchanged")
		fmt.Printf("Unique: %d, duplicates: %d\n", r.UniqueSize, r.DuplicateSize)
		return
	}
	for _, f := range r.Files {
		fmt.Printf("%s (%s): %d records\n", f.Path, f.Format, f.Records)
		for _, s := range f.Skipped {
			fmt.Printf("  skipped: %s\n", s)
		}
	}
	fmt.Println()
	fmt.Printf("Records processed:   %d\n", r.Stats.Records)
	fmt.Printf("Added as unique:     %d\n", r.Stats.AddedUnique)
	fmt.Printf("  without DOI/URL:   %d\n", r.Stats.NoIdentifier)
	fmt.Printf("Duplicates recorded: %d\n", r.Stats.Duplicates)
	fmt.Printf("Duplicates dropped:  %d\n", r.Stats.Dropped)
	fmt.Printf("Unique table:        %d\n", r.UniqueSize)
	fmt.Printf("Duplicate table:     %d\n", r.DuplicateSize)
}
