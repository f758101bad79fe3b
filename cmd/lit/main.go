// Package main provides the lit CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/config"
	"github.com/matsen/litreview/internal/reference"
	"github.com/matsen/litreview/internal/storage"
	"github.com/matsen/litreview/internal/taxonomy"
)

// Version is set at build time via ldflags
var Version = "dev"

// builtinTaxonomy names the embedded taxonomy in output and logs.
const builtinTaxonomy = "built-in"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so Cobra errors (like unknown flags) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lit",
	Short: "Systematic literature review toolkit",
	Long: `lit merges bibliographic exports into a deduplicated reference set and
analyses it against a term taxonomy.

Core features:
  - Merge RIS and Paperpile exports into unique and duplicate tables
  - Term frequencies, co-occurrence, TF-IDF and yearly trends
  - Hierarchical clustering evaluation of abstracts
  - Bibliometric statistics, search and BibTeX/RIS export

Tables are plain RIS files; the SQLite search index is rebuilt from them.
All commands output JSON by default; use --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindRepository finds the project root, exits on error.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.LocateProject(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustLoadConfig loads project configuration with .env and environment
// overrides applied and paths resolved against root, exits on error.
func mustLoadConfig(root string) *config.Config {
	// A missing .env is normal
	_ = godotenv.Load()

	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		exitWithError(ExitConfigError, "applying environment: %v", err)
	}
	return cfg.Resolved(root)
}

// mustSetupLogger builds the run logger, exits on error.
// The caller is responsible for calling the returned close function.
func mustSetupLogger(cfg *config.Config) (*slog.Logger, func() error) {
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger, closeLog := config.SetupLogger(os.Stderr, cfg.Logging.File, level)
	var once sync.Once
	var closeErr error
	closeOnce := func() error {
		once.Do(func() { closeErr = closeLog() })
		return closeErr
	}
	atExit(closeOnce)
	return logger, closeOnce
}

// mustLoadTaxonomy loads the configured taxonomy, or the built-in one when
// none is configured. Exits on error. A nil logger warns on stderr.
func mustLoadTaxonomy(cfg *config.Config, logger *slog.Logger) (*taxonomy.Taxonomy, string) {
	tax, name, err := loadTaxonomy(cfg, logger)
	if err != nil {
		exitWithError(exitCodeFor(err), "loading taxonomy: %v", err)
	}
	return tax, name
}

func loadTaxonomy(cfg *config.Config, logger *slog.Logger) (*taxonomy.Taxonomy, string, error) {
	if cfg.Paths.TaxonomyFile != "" {
		tax, err := taxonomy.Load(cfg.Paths.TaxonomyFile)
		if err != nil {
			return nil, "", err
		}
		return tax, cfg.Paths.TaxonomyFile, nil
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	logger.Warn("no paths.taxonomy_file configured, using the built-in taxonomy", "taxonomy", builtinTaxonomy)
	return taxonomy.Default(), builtinTaxonomy, nil
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustReadUnique reads the unique table, exits on error.
// A missing table reads as empty.
func mustReadUnique(cfg *config.Config) []reference.Reference {
	refs, err := storage.ReadTableOrEmpty(cfg.Paths.UniqueFile)
	if err != nil {
		exitWithError(exitCodeFor(err), "reading unique table: %v", err)
	}
	return refs
}
