package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the unique table",
	Long: `Rebuild the SQLite search index from the unique RIS table.

Run this after a merge, or whenever the index is missing or out of date.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status     string `json:"status"`
	References int    `json:"references"`
	Path       string `json:"path"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)

	db := mustOpenDatabase(root)
	defer db.Close()

	count, err := db.RebuildFromTable(cfg.Paths.UniqueFile)
	if err != nil {
		exitWithError(exitCodeFor(err), "rebuilding search index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt search index with %d references\n", count)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", References: count, Path: config.DBPath(root)})
	}
	return nil
}
