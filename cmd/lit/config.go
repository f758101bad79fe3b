package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/litreview/internal/config"
)

var configResolved bool

func init() {
	configCmd.Flags().BoolVar(&configResolved, "resolved", false, "Show paths resolved with environment overrides applied")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show project configuration",
	Long: `Show the project configuration from .litreview/config.yml.

With --resolved, paths are absolute and LIT_* environment variables (and
.env) are applied, as every other command sees them.

Examples:
  lit config
  lit config --resolved --human`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Root   string         `json:"root"`
	Config *config.Config `json:"config"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()

	var cfg *config.Config
	if configResolved {
		cfg = mustLoadConfig(root)
	} else {
		loaded, err := config.Load(root)
		if err != nil {
			exitWithError(ExitConfigError, "loading config: %v", err)
		}
		cfg = loaded
	}

	if humanOutput {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError(ExitError, "encoding config: %v", err)
		}
		fmt.Printf("# %s\n%s", config.ConfigPath(root), data)
	} else {
		outputJSON(ConfigResponse{Root: root, Config: cfg})
	}
	return nil
}
