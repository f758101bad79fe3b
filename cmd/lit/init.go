package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a review project",
	Long: `Create a .litreview directory with a default config.yml and an empty
exports directory.

Examples:
  lit init
  lit init ~/reviews/cs-early-childhood`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = config.ExpandPath(args[0])
	}
	root, err := filepath.Abs(root)
	if err != nil {
		exitWithError(ExitError, "resolving directory: %v", err)
	}

	cfg, err := config.Init(root)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	exportDir := config.ResolvePath(root, cfg.Paths.ExportDir)
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		exitWithError(ExitError, "creating export directory: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized review project in %s\n", config.ProjectPath(root))
		fmt.Printf("Place RIS or Paperpile exports in %s and run 'lit merge'\n", exportDir)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
