// Package config handles project and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ProjectDir = ".litreview"
	ConfigFile = "config.yml"
	CacheDir   = "cache"
	DBFile     = "refs.db"
)

// Default project-relative paths.
const (
	DefaultExportDir     = "exports"
	DefaultUniqueFile    = "unique.ris"
	DefaultDuplicateFile = "duplicates.ris"
	DefaultOutputDir     = "output"
)

// ErrNotInProject is returned when no .litreview directory is found.
var ErrNotInProject = errors.New("not in a litreview project (no .litreview directory found)")

// Config represents project configuration stored in .litreview/config.yml.
type Config struct {
	Paths    Paths          `yaml:"paths" json:"paths"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Cluster  ClusterConfig  `yaml:"cluster" json:"cluster"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// Paths locates the inputs and outputs. Relative paths resolve against the
// project root.
type Paths struct {
	ExportDir     string `yaml:"export_dir" json:"export_dir"`
	UniqueFile    string `yaml:"unique_file" json:"unique_file"`
	DuplicateFile string `yaml:"duplicate_file" json:"duplicate_file"`
	// TaxonomyFile empty means the built-in taxonomy.
	TaxonomyFile string `yaml:"taxonomy_file,omitempty" json:"taxonomy_file,omitempty"`
	OutputDir    string `yaml:"output_dir" json:"output_dir"`
}

// AnalysisConfig tunes term statistics.
type AnalysisConfig struct {
	MinCoOccurrence int  `yaml:"min_co_occurrence" json:"min_co_occurrence"`
	Diagonal        bool `yaml:"diagonal" json:"diagonal"`
	TopN            int  `yaml:"top_n" json:"top_n"`
	MinFrequency    int  `yaml:"min_frequency" json:"min_frequency"`
	GraphMinWeight  int  `yaml:"graph_min_weight" json:"graph_min_weight"`
	GraphMaxNodes   int  `yaml:"graph_max_nodes" json:"graph_max_nodes"`
}

// ClusterConfig tunes the clustering evaluation.
type ClusterConfig struct {
	MaxRecords int      `yaml:"max_records" json:"max_records"`
	Methods    []string `yaml:"methods" json:"methods"`
}

// LoggingConfig selects the log level and an optional JSON log file.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Default returns the configuration written by Init.
func Default() *Config {
	return &Config{
		Paths: Paths{
			ExportDir:     DefaultExportDir,
			UniqueFile:    DefaultUniqueFile,
			DuplicateFile: DefaultDuplicateFile,
			OutputDir:     DefaultOutputDir,
		},
		Analysis: AnalysisConfig{
			MinCoOccurrence: 1,
			TopN:            20,
			MinFrequency:    1,
			GraphMinWeight:  2,
			GraphMaxNodes:   30,
		},
		Cluster: ClusterConfig{
			MaxRecords: 50,
			Methods:    []string{"ward", "average"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ProjectPath returns the path to the .litreview directory from a root path.
func ProjectPath(root string) string {
	return filepath.Join(root, ProjectDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ProjectDir, ConfigFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, ProjectDir, CacheDir)
}

// DBPath returns the path to refs.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, ProjectDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a litreview project.
func IsRepository(root string) bool {
	info, err := os.Stat(ProjectPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a litreview project.
// Returns the project root path or ErrNotInProject.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotInProject
		}
		abs = parent
	}
}

// Init creates the .litreview directory and a default config.yml.
func Init(root string) (*Config, error) {
	if IsRepository(root) {
		return nil, fmt.Errorf("project already exists at %s", ProjectPath(root))
	}
	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}
	cfg := Default()
	if err := cfg.Save(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from the project at the given root. Missing
// settings keep their defaults; a missing file yields the defaults.
func Load(root string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to the project at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Paths.UniqueFile == "" || c.Paths.DuplicateFile == "" {
		return fmt.Errorf("paths.unique_file and paths.duplicate_file must be set")
	}
	if c.Paths.UniqueFile == c.Paths.DuplicateFile {
		return fmt.Errorf("paths.unique_file and paths.duplicate_file must differ")
	}
	if c.Analysis.MinCoOccurrence < 0 || c.Analysis.TopN < 0 || c.Cluster.MaxRecords < 0 {
		return fmt.Errorf("analysis and cluster limits must not be negative")
	}
	return nil
}

// Resolved returns a copy whose paths are absolute, resolved against root.
func (c *Config) Resolved(root string) *Config {
	out := *c
	out.Cluster.Methods = append([]string(nil), c.Cluster.Methods...)
	out.Paths = Paths{
		ExportDir:     ResolvePath(root, c.Paths.ExportDir),
		UniqueFile:    ResolvePath(root, c.Paths.UniqueFile),
		DuplicateFile: ResolvePath(root, c.Paths.DuplicateFile),
		TaxonomyFile:  ResolvePath(root, c.Paths.TaxonomyFile),
		OutputDir:     ResolvePath(root, c.Paths.OutputDir),
	}
	if c.Logging.File != "" {
		out.Logging.File = ResolvePath(root, c.Logging.File)
	}
	return &out
}

// ResolvePath expands ~ and makes p absolute relative to root. Empty stays empty.
func ResolvePath(root, p string) string {
	if p == "" {
		return ""
	}
	p = ExpandPath(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
